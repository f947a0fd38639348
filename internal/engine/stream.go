package engine

import (
	"context"
	"time"
)

// Stream emits a snapshot immediately and then once per interval until ctx is
// cancelled (returns nil) or emit fails (returns its error).
// Every call owns its ticker, so consumers never share a cadence.
func (e *Engine) Stream(ctx context.Context, interval time.Duration, emit func(Snapshot) error) error {
	if ctx.Err() != nil {
		return nil
	}
	if err := emit(e.Snapshot()); err != nil {
		return err
	}

	ticker := e.Clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.Chan():
			if err := emit(e.SnapshotAt(now)); err != nil {
				return err
			}
		}
	}
}
