package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(observe)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.cors())
	r.Use(chimiddleware.GetHead)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apperr.New(apperr.NotFound, config.HTTPMsgNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Error: config.HTTPMsgMethodNotAll,
			Code:  "method_not_allowed",
		})
	})

	r.Get(config.RouteCountries, s.handleRegions)
	r.Get(config.RouteRegions, s.handleRegions)
	r.Get(config.RouteSnapshot, s.handleSnapshot)
	r.Get(config.RouteCountdowns, s.handleSnapshot)
	r.Get(config.RouteStream, s.handleSSE)
	r.Get(config.RouteCountdownsSSE, s.handleSSE)
	r.Get(config.RouteWebSocket, s.handleWebSocket)

	// Routes that reach third-party APIs are limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit())
		r.Get(config.RouteCountryDetails, s.handleDetails)
		r.Get(config.RouteRegionDetails, s.handleDetails)
		r.Get(config.RouteSearch, s.handleSearch)
		r.Get(config.RouteSearchAlias, s.handleSearch)
	})

	if s.opts.Calendar != nil {
		r.Handle(config.RouteCalendar, s.opts.Calendar)
	}
	r.Get(config.RouteHealth, s.handleHealth)
	r.Handle(config.RouteMetrics, promhttp.Handler())

	if dir := strings.TrimSpace(s.opts.Settings.StaticDir); dir != "" {
		r.Handle(config.RouteRoot+"*", http.FileServer(http.Dir(dir)))
	}

	return r
}

func (s *Server) cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.opts.Settings.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", config.HeaderAcceptLanguage, config.HeaderContentType, config.HeaderRequestID},
		ExposedHeaders: []string{config.HeaderRequestID},
		MaxAge:         config.CORSMaxAge,
	})
}

// rateLimit is a no-op when RateLimitRequests is zero.
func (s *Server) rateLimit() func(http.Handler) http.Handler {
	if s.opts.Settings.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.opts.Settings.RateLimitRequests,
		s.opts.Settings.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error: config.HTTPMsgRateLimited,
				Code:  "rate_limited",
			})
		}),
	)
}
