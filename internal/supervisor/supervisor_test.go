package supervisor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/config"
)

// fakeStarter fails its first failFirst starts, then blocks until cancelled.
type fakeStarter struct {
	starts    atomic.Int32
	failFirst int32
}

func (f *fakeStarter) Start(ctx context.Context) error {
	if n := f.starts.Add(1); n <= f.failFirst {
		return errors.New("address already in use")
	}
	<-ctx.Done()
	return nil
}

// lockedBuffer is written by supervisor goroutines and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHTTPService_ReturnsContextErrorOnShutdown(t *testing.T) {
	svc := &HTTPService{Server: &fakeStarter{}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	assert.Equal(t, config.ServiceHTTP, svc.String())
}

func TestHTTPService_PropagatesStartupFailure(t *testing.T) {
	svc := &HTTPService{Server: &fakeStarter{failFirst: 1}}

	err := svc.Serve(context.Background())
	assert.EqualError(t, err, "address already in use")
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(nil)
	starter := &fakeStarter{failFirst: 1}
	tree.AddAPI(&HTTPService{Server: starter})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool {
		return starter.starts.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond, "service was not restarted")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(config.SupervisorTimeout):
		t.Fatal("tree did not stop")
	}
}

func TestTree_RunsBackgroundServices(t *testing.T) {
	tree := NewTree(nil)
	api := &fakeStarter{}
	job := &fakeStarter{}
	tree.AddAPI(&HTTPService{Server: api})
	tree.AddBackground(&HTTPService{Server: job})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := tree.Serve(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.EqualValues(t, 1, api.starts.Load())
	assert.EqualValues(t, 1, job.starts.Load())
}

func TestTree_EventsAreTaggedWithComponent(t *testing.T) {
	var out lockedBuffer
	logger := slog.New(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tree := NewTree(logger)
	starter := &fakeStarter{failFirst: 1}
	tree.AddAPI(&HTTPService{Server: starter})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	require.Eventually(t, func() bool {
		return starter.starts.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond, "service was not restarted")
	cancel()
	<-errCh

	logs := out.String()
	assert.Contains(t, logs, `"component":"supervisor"`)
	assert.Contains(t, logs, "address already in use")
}
