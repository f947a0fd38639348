package engine

import "github.com/jonboulle/clockwork"

// Clock abstracts time.Now() and tickers to allow deterministic testing.
// Production code uses clockwork.NewRealClock(); tests drive a fake clock.
type Clock = clockwork.Clock

// RealClock returns the wall clock.
func RealClock() Clock {
	return clockwork.NewRealClock()
}
