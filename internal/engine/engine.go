// Package engine computes per-region countdowns to the local New Year.
package engine

import (
	"log/slog"
	"slices"
	"time"

	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/metrics"
	"github.com/tartampluch/go-countdown/internal/region"
)

// Engine produces snapshots of an immutable region list.
type Engine struct {
	Clock   Clock
	regions []region.Region
}

// New creates an Engine over the catalog's regions.
func New(catalog *region.Catalog, clock Clock) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	return &Engine{Clock: clock, regions: catalog.All()}
}

// Snapshot computes the countdown at the clock's current instant.
func (e *Engine) Snapshot() Snapshot {
	return e.SnapshotAt(e.Clock.Now())
}

// SnapshotAt computes the countdown at a given instant. It is pure: the same
// instant always yields the same snapshot.
func (e *Engine) SnapshotAt(now time.Time) Snapshot {
	entries := Compute(e.regions, now)
	metrics.RecordSnapshot(len(entries))
	return Snapshot{UTC: now.UTC(), Countries: entries}
}

// Compute returns one Entry per region whose zone resolves, sorted ascending by
// Remaining. Ties keep the input order. Regions with an unusable zone are omitted.
func Compute(regions []region.Region, now time.Time) []Entry {
	entries := make([]Entry, 0, len(regions))
	for _, r := range regions {
		loc, err := region.Location(r.Timezone)
		if err != nil {
			slog.Debug(config.MsgEntryOmitted,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyCode, r.Code,
				config.LogKeyTimezone, r.Timezone,
				config.LogKeyError, err,
			)
			continue
		}

		local := now.In(loc)
		remaining, celebrating := countdown(local, loc)
		entries = append(entries, Entry{
			Code:        r.Code,
			Name:        r.Name,
			Timezone:    r.Timezone,
			LocalTime:   local,
			Remaining:   remaining,
			Celebrating: celebrating,
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Remaining < b.Remaining:
			return -1
		case a.Remaining > b.Remaining:
			return 1
		default:
			return 0
		}
	})
	return entries
}

// countdown returns the whole seconds left until the next local January 1 and
// whether the region is inside the celebration window of the year that just began.
// While celebrating, the remaining count is 0.
func countdown(local time.Time, loc *time.Location) (int64, bool) {
	started := time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	if !local.Before(started) && local.Before(started.Add(config.CelebrationWindow)) {
		return 0, true
	}

	next := time.Date(local.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
	remaining := int64(next.Sub(local) / time.Second)
	return max(0, remaining), false
}

// NextNewYear returns the instant of the next local New Year of a zone at now.
// A New Year that started less than CelebrationWindow ago is still returned.
func NextNewYear(loc *time.Location, now time.Time) time.Time {
	local := now.In(loc)
	started := time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, loc)
	if local.Before(started.Add(config.CelebrationWindow)) {
		return started
	}
	return time.Date(local.Year()+1, time.January, 1, 0, 0, 0, 0, loc)
}
