package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/details"
	"github.com/tartampluch/go-countdown/internal/videosearch"
)

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Regions)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNone)
	writeJSON(w, http.StatusOK, s.opts.Countdown.Snapshot())
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	opts := details.Options{
		Enrich:    r.URL.Query().Get(config.ParamEnrich) == config.EnrichOn,
		Localizer: s.localizer(r),
	}
	d, err := s.opts.Details.Details(r.Context(), chi.URLParam(r, config.ParamCode), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.opts.Search == nil {
		writeError(w, videosearch.ErrNotConfigured)
		return
	}

	query := r.URL.Query().Get(config.ParamQuery)
	if query == "" {
		query = r.URL.Query().Get(config.ParamQuery2)
	}
	res, err := s.opts.Search.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type healthBody struct {
	Status  string `json:"status"`
	Regions int    `json:"regions"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{
		Status:  config.HTTPStatusHealthy,
		Regions: len(s.opts.Regions),
		Version: config.Version,
	})
}
