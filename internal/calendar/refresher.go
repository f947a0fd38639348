package calendar

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/greetings"
	"github.com/tartampluch/go-countdown/internal/metrics"
)

// Refresher rebuilds the feed at start and then every Interval.
// It implements suture.Service.
type Refresher struct {
	Generator  *Generator
	Feed       *Feed
	Translator *greetings.Translator
	Clock      clockwork.Clock
	Interval   time.Duration
}

// Serve blocks until ctx is cancelled.
func (r *Refresher) Serve(ctx context.Context) error {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = config.DefaultICalRefresh
	}

	slog.Info(config.MsgRefresherStart,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyInterval, interval.String(),
	)

	r.Refresh(clock.Now())

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info(config.MsgRefresherStop, config.LogKeyComponent, config.CompCalendar)
			return ctx.Err()
		case now := <-ticker.Chan():
			r.Refresh(now)
		}
	}
}

// Refresh renders every supported language once. A failed language keeps its
// previous render.
func (r *Refresher) Refresh(now time.Time) {
	for _, lang := range r.Translator.Languages() {
		data, err := r.Generator.Generate(now, r.Translator.For(lang, ""))
		metrics.RecordCalendarBuild(now, err)
		if err != nil {
			slog.Error(config.ErrICalEncode,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyLang, lang,
				config.LogKeyError, err,
			)
			continue
		}
		r.Feed.Update(lang, data, now)
	}
}

// String names the service in supervisor logs.
func (r *Refresher) String() string {
	return config.CompCalendar
}
