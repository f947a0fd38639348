// Package supervisor runs the long-lived services of the process under a suture tree.
package supervisor

import (
	"context"
	"log/slog"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Tree is the root supervisor with one child for the HTTP API and one for
// background jobs such as the calendar refresher.
type Tree struct {
	root       *suture.Supervisor
	api        *suture.Supervisor
	background *suture.Supervisor
}

// NewTree builds the supervisor hierarchy. Supervisor events are logged through
// logger, tagged with the supervisor component.
func NewTree(logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(config.LogKeyComponent, config.CompSupervisor)

	// MustHook has a pointer receiver.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	rootSpec := suture.Spec{
		EventHook:        hook,
		FailureThreshold: config.SupervisorFailureThreshold,
		FailureDecay:     config.SupervisorFailureDecay,
		FailureBackoff:   config.SupervisorFailureBackoff,
		Timeout:          config.SupervisorTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.SupervisorFailureThreshold,
		FailureDecay:     config.SupervisorFailureDecay,
		FailureBackoff:   config.SupervisorFailureBackoff,
		Timeout:          config.SupervisorTimeout,
	}

	t := &Tree{
		root:       suture.New(config.SupervisorRoot, rootSpec),
		api:        suture.New(config.SupervisorAPI, childSpec),
		background: suture.New(config.SupervisorBackground, childSpec),
	}
	t.root.Add(t.api)
	t.root.Add(t.background)
	return t
}

// AddAPI supervises a request-serving service.
func (t *Tree) AddAPI(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

// AddBackground supervises a periodic job.
func (t *Tree) AddBackground(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

// Serve blocks until ctx is cancelled or the tree gives up.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}
