package engine

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tartampluch/go-countdown/internal/config"
)

// Entry is the countdown state of one region at one instant.
type Entry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`

	// LocalTime is the instant expressed in the region's zone.
	LocalTime time.Time `json:"localISO"`

	// Remaining is the whole number of seconds until the next local New Year.
	// It is 0 while the region is celebrating.
	Remaining int64 `json:"remaining"`

	// Celebrating is true during the first CelebrationWindow of the local year.
	Celebrating bool `json:"celebrating"`
}

// Snapshot is the countdown state of all regions at one instant, sorted by Remaining.
type Snapshot struct {
	UTC       time.Time `json:"utc"`
	Countries []Entry   `json:"countries"`
}

// MarshalJSON renders LocalTime with millisecond precision and its zone offset.
func (e Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(struct {
		alias
		LocalTime string `json:"localISO"`
	}{
		alias:     alias(e),
		LocalTime: e.LocalTime.Format(config.ISOMillis),
	})
}

// MarshalJSON renders UTC with millisecond precision.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	countries := s.Countries
	if countries == nil {
		countries = []Entry{}
	}
	return json.Marshal(struct {
		UTC       string  `json:"utc"`
		Countries []Entry `json:"countries"`
	}{
		UTC:       s.UTC.UTC().Format(config.ISOMillis),
		Countries: countries,
	})
}
