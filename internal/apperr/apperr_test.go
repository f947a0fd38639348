package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tartampluch/go-countdown/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.New(apperr.NotFound, "country not found"), http.StatusNotFound},
		{"bad request", apperr.New(apperr.BadRequest, "missing q"), http.StatusBadRequest},
		{"not configured", apperr.New(apperr.NotConfigured, "no key"), http.StatusNotImplemented},
		{"upstream status kept", apperr.Upstream(http.StatusForbidden, "quota"), http.StatusForbidden},
		{"upstream without status", apperr.Wrap(apperr.UpstreamFailure, "dial", errors.New("refused")), http.StatusBadGateway},
		{"internal", apperr.New(apperr.Internal, "boom"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped typed error", fmt.Errorf("ctx: %w", apperr.New(apperr.NotFound, "x")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err))
		})
	}
}

func TestKindOfAndIs(t *testing.T) {
	sentinel := apperr.New(apperr.NotFound, "country not found")
	wrapped := fmt.Errorf("lookup ZZ: %w", sentinel)

	assert.Equal(t, apperr.NotFound, apperr.KindOf(wrapped))
	assert.Equal(t, apperr.Internal, apperr.KindOf(errors.New("plain")))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, apperr.New(apperr.NotFound, "other"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "quota exceeded", apperr.Message(apperr.Upstream(http.StatusForbidden, "quota exceeded")))
	assert.Equal(t, "Internal Server Error", apperr.Message(errors.New("secret detail")))
	assert.Equal(t, "Internal Server Error", apperr.Message(apperr.Wrap(apperr.Internal, "db", errors.New("secret"))))
}

func TestErrorString(t *testing.T) {
	err := apperr.Wrap(apperr.UpstreamFailure, "network error", errors.New("refused"))
	assert.Equal(t, "network error: refused", err.Error())
	assert.Equal(t, "upstream_failure", apperr.UpstreamFailure.String())
	assert.Equal(t, "not_configured", apperr.NotConfigured.String())
}
