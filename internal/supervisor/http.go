package supervisor

import (
	"context"

	"github.com/tartampluch/go-countdown/internal/config"
)

// Starter is a server whose Start blocks until ctx is cancelled.
type Starter interface {
	Start(ctx context.Context) error
}

// HTTPService adapts a Starter to suture.Service.
type HTTPService struct {
	Server Starter
}

// Serve implements suture.Service. A startup failure is returned so the
// supervisor restarts the listener with backoff.
func (h *HTTPService) Serve(ctx context.Context) error {
	if err := h.Server.Start(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPService) String() string {
	return config.ServiceHTTP
}
