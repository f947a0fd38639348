// Package server exposes the countdown, the country cards, the video search proxy
// and the calendar feed over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/details"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/greetings"
	"github.com/tartampluch/go-countdown/internal/region"
	"github.com/tartampluch/go-countdown/internal/videosearch"
)

// Countdown is the part of the engine the HTTP layer needs.
type Countdown interface {
	Snapshot() engine.Snapshot
	Stream(ctx context.Context, interval time.Duration, emit func(engine.Snapshot) error) error
}

// DetailsProvider builds country cards.
type DetailsProvider interface {
	Details(ctx context.Context, code string, opts details.Options) (details.Details, error)
}

// Searcher proxies live video searches.
type Searcher interface {
	Search(ctx context.Context, query string) (videosearch.Result, error)
}

// Options wires the server to its collaborators.
type Options struct {
	Settings   config.ServerSettings
	Regions    []region.Region
	Countdown  Countdown
	Details    DetailsProvider
	Search     Searcher
	Calendar   http.Handler
	Translator *greetings.Translator

	// StreamInterval is the push cadence of SSE and WebSocket streams.
	StreamInterval time.Duration
}

// Server handles the HTTP API.
type Server struct {
	opts    Options
	handler http.Handler

	mu sync.Mutex
	// closing is cancelled when the listener shuts down so long-lived streams end
	// instead of holding Shutdown until its timeout.
	closing context.Context
}

// New creates the server and builds its router.
func New(opts Options) *Server {
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = config.TickInterval
	}
	if opts.Regions == nil {
		opts.Regions = []region.Region{}
	}

	s := &Server{
		opts:    opts,
		closing: context.Background(),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start initializes the HTTP server and blocks until the context is cancelled.
// It returns nil after a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if s.opts.Settings.Port == 0 {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.opts.Settings.Addr(),
		Handler:      s.handler,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}
	closing, closeStreams := context.WithCancel(context.Background())
	defer closeStreams()
	s.mu.Lock()
	s.closing = closing
	s.mu.Unlock()
	srv.RegisterOnShutdown(closeStreams)

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, srv.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// streamContext derives the context of one stream: it ends with the request or
// when the server shuts down.
func (s *Server) streamContext(parent context.Context) (context.Context, context.CancelFunc) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(closing, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// localizer picks the language of a request: ?lang= wins over Accept-Language.
func (s *Server) localizer(r *http.Request) *greetings.Localizer {
	if s.opts.Translator == nil {
		return nil
	}
	return s.opts.Translator.For(r.URL.Query().Get(config.ParamLang), r.Header.Get(config.HeaderAcceptLanguage))
}

// LanguageSelector returns the language picker used by the calendar feed, so the
// feed and the JSON API agree on request languages.
func LanguageSelector(t *greetings.Translator) func(r *http.Request) string {
	return func(r *http.Request) string {
		return t.For(r.URL.Query().Get(config.ParamLang), r.Header.Get(config.HeaderAcceptLanguage)).Lang()
	}
}
