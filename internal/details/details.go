// Package details aggregates the country card shown when a region is selected.
package details

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/encyclopedia"
	"github.com/tartampluch/go-countdown/internal/greetings"
	"github.com/tartampluch/go-countdown/internal/region"
)

// Encyclopedia is the subset of the encyclopedia client used for enrichment.
type Encyclopedia interface {
	Summary(ctx context.Context, title string) (encyclopedia.Summary, error)
	SearchTitle(ctx context.Context, query string) (string, error)
	Images(ctx context.Context, query string, limit int) ([]string, error)
}

// Lookup resolves region codes.
type Lookup interface {
	Lookup(code string) (region.Region, error)
}

// Summary is the encyclopedia lead of the country.
type Summary struct {
	WikiSummary string `json:"wikiSummary"`
	WikiURL     string `json:"wikiUrl"`
}

// Leader is the head of state or government page, when one was found.
type Leader struct {
	Query       *string `json:"query"`
	WikiSummary *string `json:"wikiSummary"`
	WikiURL     *string `json:"wikiUrl"`
}

// Details is the country card payload.
type Details struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Timezone      string   `json:"timezone"`
	Summary       Summary  `json:"summary"`
	Leader        Leader   `json:"leader"`
	Images        []string `json:"images"`
	NewsSearch    string   `json:"newsSearch"`
	YoutubeSearch string   `json:"youtubeSearch"`
	Wishes        []string `json:"wishes"`
}

// Options tune a Details call.
type Options struct {
	// Enrich allows calls to the encyclopedia. Without it no network call is made.
	Enrich bool
	// Localizer renders wishes and search phrases. Nil means English.
	Localizer *greetings.Localizer
}

// Service builds Details.
type Service struct {
	Regions      Lookup
	Encyclopedia Encyclopedia
	Timeout      time.Duration
}

// Details returns the card of a region. Unknown codes fail with a NotFound error;
// enrichment failures are logged and never surfaced.
func (s *Service) Details(ctx context.Context, code string, opts Options) (Details, error) {
	r, err := s.Regions.Lookup(code)
	if err != nil {
		return Details{}, err
	}

	d := fallback(r, opts.Localizer)
	if opts.Enrich && s.Encyclopedia != nil {
		s.enrich(ctx, &d, opts.Localizer)
	}
	return d, nil
}

// fallback is the static payload, built without any network access.
func fallback(r region.Region, l *greetings.Localizer) Details {
	return Details{
		Code:     r.Code,
		Name:     r.Name,
		Timezone: r.Timezone,
		Summary: Summary{
			WikiSummary: l.Name(config.TKeySummary, config.FallbackSummary, r.Name),
			WikiURL:     config.WikipediaPageBase + url.PathEscape(r.Name),
		},
		Images:        []string{},
		NewsSearch:    config.NewsSearchURL + url.QueryEscape(l.Name(config.TKeyNewsQuery, config.FallbackNewsQuery, r.Name)),
		YoutubeSearch: config.VideoSearchURL + url.QueryEscape(l.Name(config.TKeyVideoQuery, config.FallbackVideoQuery, r.Name)),
		Wishes:        l.Wishes(r.Name),
	}
}

func (s *Service) enrich(ctx context.Context, d *Details, l *greetings.Localizer) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = config.EnrichTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := slog.With(
		config.LogKeyComponent, config.CompDetails,
		config.LogKeyCode, d.Code,
	)
	warn := func(step string, err error) {
		log.Warn(config.MsgEnrichFailed, config.LogKeyStep, step, config.LogKeyError, err)
	}

	if sum, err := s.Encyclopedia.Summary(ctx, d.Name); err != nil {
		warn("summary", err)
	} else {
		if sum.Extract != "" {
			d.Summary.WikiSummary = sum.Extract
		}
		if sum.URL != "" {
			d.Summary.WikiURL = sum.URL
		}
	}

	s.enrichLeader(ctx, d, warn)

	imgQuery := l.Name(config.TKeyImageQuery, config.FallbackImageQuery, d.Name)
	if images, err := s.Encyclopedia.Images(ctx, imgQuery, config.WikipediaImageLimit); err != nil {
		warn("images", err)
	} else if len(images) > 0 {
		d.Images = images
	}
}

// enrichLeader tries each leader title in turn and stops at the first search hit.
func (s *Service) enrichLeader(ctx context.Context, d *Details, warn func(string, error)) {
	for _, format := range config.LeaderTitles {
		title, err := s.Encyclopedia.SearchTitle(ctx, fmt.Sprintf(format, d.Name))
		if err != nil {
			warn("leader_search", err)
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if title == "" {
			continue
		}

		d.Leader.Query = &title
		sum, err := s.Encyclopedia.Summary(ctx, title)
		if err != nil {
			warn("leader_summary", err)
			return
		}
		if sum.Extract != "" {
			d.Leader.WikiSummary = &sum.Extract
		}
		wikiURL := sum.URL
		if wikiURL == "" {
			wikiURL = config.WikipediaPageBase + url.PathEscape(title)
		}
		d.Leader.WikiURL = &wikiURL
		return
	}
}
