package server

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
)

// errorBody is the JSON envelope of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps err to its status and writes the envelope. Internal errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyStatus, status,
			config.LogKeyError, err,
		)
	}
	writeJSON(w, status, errorBody{
		Error: apperr.Message(err),
		Code:  apperr.KindOf(err).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
