package engine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/engine"
	"github.com/tartampluch/go-countdown/internal/region"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func utc(year int, month time.Month, day, hour, minute, sec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func entryFor(t *testing.T, entries []engine.Entry, code string) engine.Entry {
	t.Helper()
	for _, e := range entries {
		if e.Code == code {
			return e
		}
	}
	t.Fatalf("no entry for %s", code)
	return engine.Entry{}
}

var sample = []region.Region{
	{Code: "US", Name: "United States", Timezone: "America/New_York"},
	{Code: "GB", Name: "United Kingdom", Timezone: "Europe/London"},
	{Code: "IN", Name: "India", Timezone: "Asia/Kolkata"},
	{Code: "JP", Name: "Japan", Timezone: "Asia/Tokyo"},
	{Code: "AU", Name: "Australia (Sydney)", Timezone: "Australia/Sydney"},
}

// -----------------------------------------------------------------------------
// Compute
// -----------------------------------------------------------------------------

func TestCompute_OneSecondBeforeMidnightUTC(t *testing.T) {
	entries := engine.Compute([]region.Region{{Code: "ZU", Name: "Zulu", Timezone: "UTC"}}, utc(2025, 12, 31, 23, 59, 59))

	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].Remaining)
	assert.False(t, entries[0].Celebrating)
}

func TestCompute_CelebrationWindow(t *testing.T) {
	regions := []region.Region{{Code: "ZU", Name: "Zulu", Timezone: "UTC"}}
	newYear := utc(2026, 1, 1, 0, 0, 0)
	nextYear := utc(2027, 1, 1, 0, 0, 0)

	tests := []struct {
		name        string
		now         time.Time
		remaining   int64
		celebrating bool
	}{
		{"exact instant", newYear, 0, true},
		{"half an hour in", newYear.Add(30 * time.Minute), 0, true},
		{"last second of window", newYear.Add(config.CelebrationWindow - time.Second), 0, true},
		{"window closed", newYear.Add(config.CelebrationWindow), int64(nextYear.Sub(newYear.Add(config.CelebrationWindow)) / time.Second), false},
		{"61 minutes later", newYear.Add(61 * time.Minute), int64(nextYear.Sub(newYear.Add(61*time.Minute)) / time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engine.Compute(regions, tt.now)[0]
			assert.Equal(t, tt.remaining, e.Remaining)
			assert.Equal(t, tt.celebrating, e.Celebrating)
		})
	}
}

func TestCompute_ZonesCrossMidnightAtTheirOwnOffset(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		at   time.Time
	}{
		{"Sydney daylight time", "Australia/Sydney", utc(2025, 12, 31, 13, 0, 0)},
		{"New York standard time", "America/New_York", utc(2026, 1, 1, 5, 0, 0)},
		{"Kolkata half hour", "Asia/Kolkata", utc(2025, 12, 31, 18, 30, 0)},
		{"Kathmandu quarter hour", "Asia/Kathmandu", utc(2025, 12, 31, 18, 15, 0)},
		{"Chatham daylight time", "Pacific/Chatham", utc(2025, 12, 31, 10, 15, 0)},
		{"Kiritimati first on Earth", "Pacific/Kiritimati", utc(2025, 12, 31, 10, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := []region.Region{{Code: "XX", Name: tt.name, Timezone: tt.tz}}

			before := engine.Compute(regions, tt.at.Add(-time.Second))[0]
			assert.EqualValues(t, 1, before.Remaining)
			assert.False(t, before.Celebrating)

			at := engine.Compute(regions, tt.at)[0]
			assert.EqualValues(t, 0, at.Remaining)
			assert.True(t, at.Celebrating)
			assert.Equal(t, 2026, at.LocalTime.Year())
			assert.Equal(t, 0, at.LocalTime.Hour())

			// The window closes one hour after the zone's own midnight, then the
			// countdown targets the following local New Year.
			loc, err := time.LoadLocation(tt.tz)
			require.NoError(t, err)
			closed := tt.at.Add(config.CelebrationWindow)
			after := engine.Compute(regions, closed)[0]
			assert.False(t, after.Celebrating)
			assert.EqualValues(t, time.Date(2027, 1, 1, 0, 0, 0, 0, loc).Sub(closed)/time.Second, after.Remaining)

			late := engine.Compute(regions, tt.at.Add(61*time.Minute))[0]
			assert.False(t, late.Celebrating)
			assert.Positive(t, late.Remaining)
		})
	}
}

func TestCompute_CountsAbsoluteSecondsAcrossDST(t *testing.T) {
	entries := engine.Compute([]region.Region{
		{Code: "US", Name: "United States", Timezone: "America/New_York"},
		{Code: "GB", Name: "United Kingdom", Timezone: "Europe/London"},
	}, utc(2025, 3, 29, 12, 0, 0))

	assert.EqualValues(t, 23976000, entryFor(t, entries, "GB").Remaining)

	summer := engine.Compute([]region.Region{{Code: "US", Name: "United States", Timezone: "America/New_York"}}, utc(2025, 6, 1, 12, 0, 0))
	assert.EqualValues(t, 18464400, summer[0].Remaining)
}

func TestCompute_SortedAscendingAndStable(t *testing.T) {
	regions := []region.Region{
		{Code: "B", Name: "Second Tokyo", Timezone: "Asia/Tokyo"},
		{Code: "US", Name: "United States", Timezone: "America/New_York"},
		{Code: "A", Name: "First Tokyo", Timezone: "Asia/Tokyo"},
		{Code: "IN", Name: "India", Timezone: "Asia/Kolkata"},
	}

	entries := engine.Compute(regions, utc(2025, 12, 31, 12, 0, 0))
	require.Len(t, entries, 4)

	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Remaining, entries[i].Remaining)
	}
	assert.Equal(t, []string{"B", "A", "IN", "US"}, []string{entries[0].Code, entries[1].Code, entries[2].Code, entries[3].Code},
		"equal remaining keeps input order")
}

func TestCompute_OmitsUnusableZones(t *testing.T) {
	entries := engine.Compute([]region.Region{
		{Code: "JP", Name: "Japan", Timezone: "Asia/Tokyo"},
		{Code: "XX", Name: "Atlantis", Timezone: "Ocean/Atlantis"},
		{Code: "YY", Name: "Nowhere", Timezone: ""},
	}, utc(2025, 7, 1, 0, 0, 0))

	require.Len(t, entries, 1)
	assert.Equal(t, "JP", entries[0].Code)
}

func TestCompute_RemainingNeverNegativeNorBeyondOneYear(t *testing.T) {
	start := utc(2024, 12, 30, 0, 0, 0)
	for h := 0; h < 24*370; h += 7 {
		now := start.Add(time.Duration(h) * time.Hour)
		for _, e := range engine.Compute(sample, now) {
			assert.GreaterOrEqual(t, e.Remaining, int64(0))
			assert.LessOrEqual(t, e.Remaining, int64(366*24*3600))
			if e.Celebrating {
				assert.Zero(t, e.Remaining)
			}
		}
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	entries := engine.Compute(nil, time.Now())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// -----------------------------------------------------------------------------
// Engine & Snapshot
// -----------------------------------------------------------------------------

func TestEngine_SnapshotIsIdempotent(t *testing.T) {
	now := utc(2025, 12, 31, 23, 59, 59)
	eng := engine.New(region.New(sample), clockwork.NewFakeClockAt(now))

	first := eng.Snapshot()
	second := eng.SnapshotAt(now)

	assert.Equal(t, first, second)
	assert.Equal(t, now, first.UTC)
	assert.Len(t, first.Countries, len(sample))
}

func TestSnapshot_JSONShape(t *testing.T) {
	now := utc(2025, 12, 31, 23, 59, 59)
	eng := engine.New(region.New(sample), clockwork.NewFakeClockAt(now))

	raw, err := json.Marshal(eng.SnapshotAt(now))
	require.NoError(t, err)

	var decoded struct {
		UTC       string                   `json:"utc"`
		Countries []map[string]interface{} `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "2025-12-31T23:59:59.000Z", decoded.UTC)
	require.Len(t, decoded.Countries, len(sample))
	for _, c := range decoded.Countries {
		for _, key := range []string{"code", "name", "timezone", "localISO", "remaining", "celebrating"} {
			assert.Contains(t, c, key)
		}
		if c["code"] == "JP" {
			assert.Equal(t, "2026-01-01T08:59:59.000+09:00", c["localISO"])
			assert.Equal(t, false, c["celebrating"], "Tokyo closed its celebration window hours ago")
		}
	}
	assert.False(t, strings.Contains(string(raw), "LocalTime"))
}

func TestSnapshot_EmptyCountriesEncodeAsArray(t *testing.T) {
	raw, err := json.Marshal(engine.Snapshot{UTC: utc(2025, 1, 1, 0, 0, 0)})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"countries":[]`)
}

func TestNextNewYear(t *testing.T) {
	tokyo, err := region.Location("Asia/Tokyo")
	require.NoError(t, err)

	assert.True(t, engine.NextNewYear(tokyo, utc(2025, 6, 1, 0, 0, 0)).Equal(utc(2025, 12, 31, 15, 0, 0)))
	assert.True(t, engine.NextNewYear(tokyo, utc(2025, 12, 31, 15, 30, 0)).Equal(utc(2025, 12, 31, 15, 0, 0)),
		"an ongoing celebration is still the current New Year")
	assert.True(t, engine.NextNewYear(tokyo, utc(2025, 12, 31, 16, 0, 0)).Equal(utc(2026, 12, 31, 15, 0, 0)))
}

// -----------------------------------------------------------------------------
// Stream
// -----------------------------------------------------------------------------

func TestStream_EmitsImmediatelyThenEveryTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(utc(2025, 12, 31, 23, 59, 58))
	eng := engine.New(region.New([]region.Region{{Code: "GB", Name: "United Kingdom", Timezone: "Europe/London"}}), clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		received []engine.Snapshot
	)
	emitted := make(chan struct{}, 8)
	done := make(chan error, 1)

	go func() {
		done <- eng.Stream(ctx, time.Second, func(s engine.Snapshot) error {
			mu.Lock()
			received = append(received, s)
			mu.Unlock()
			emitted <- struct{}{}
			return nil
		})
	}()

	<-emitted
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Second)
	<-emitted
	clock.Advance(time.Second)
	<-emitted

	cancel()
	assert.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 3)
	assert.EqualValues(t, 2, received[0].Countries[0].Remaining)
	assert.EqualValues(t, 1, received[1].Countries[0].Remaining)
	assert.EqualValues(t, 0, received[2].Countries[0].Remaining)
	assert.True(t, received[2].Countries[0].Celebrating)
}

func TestStream_StopsOnEmitError(t *testing.T) {
	clock := clockwork.NewFakeClockAt(utc(2025, 6, 1, 0, 0, 0))
	eng := engine.New(region.New(sample), clock)
	boom := errors.New("client went away")

	err := eng.Stream(context.Background(), time.Second, func(engine.Snapshot) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestStream_CancelledContextEmitsNothing(t *testing.T) {
	eng := engine.New(region.New(sample), clockwork.NewFakeClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := eng.Stream(ctx, time.Second, func(engine.Snapshot) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Zero(t, calls)
}

func TestStream_ConsumersAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClockAt(utc(2025, 6, 1, 0, 0, 0))
	eng := engine.New(region.New(sample), clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	counts := make([]chan struct{}, 2)
	done := make(chan error, 2)
	for i := range counts {
		ch := make(chan struct{}, 8)
		counts[i] = ch
		go func() {
			done <- eng.Stream(ctx, time.Second, func(engine.Snapshot) error {
				ch <- struct{}{}
				return nil
			})
		}()
	}

	<-counts[0]
	<-counts[1]
	require.NoError(t, clock.BlockUntilContext(ctx, 2), "each consumer owns a ticker")

	clock.Advance(time.Second)
	<-counts[0]
	<-counts[1]

	cancel()
	assert.NoError(t, <-done)
	assert.NoError(t, <-done)
}
