// Package upstream is the outbound HTTP layer shared by the third-party API clients.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tartampluch/go-countdown/internal/apperr"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/metrics"
	"golang.org/x/time/rate"
)

// Fetcher retrieves a response body from a third-party API.
// This interface allows for mocking in tests and decoupling from the network layer.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher implements Fetcher with net/http, a circuit breaker and optional pacing.
type HTTPFetcher struct {
	Client  *http.Client
	Name    string
	Limiter *rate.Limiter

	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPFetcher creates a fetcher for one upstream. name labels logs, metrics and
// the circuit breaker. A nil limiter disables pacing.
func NewHTTPFetcher(name string, timeout time.Duration, limiter *rate.Limiter) *HTTPFetcher {
	if timeout <= 0 {
		timeout = config.HTTPTimeout
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		Name:    name,
		Limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        name,
			MaxRequests: config.BreakerMaxRequests,
			Interval:    config.BreakerInterval,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < config.BreakerMinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= config.BreakerFailRatio
			},
			IsSuccessful: isSuccessful,
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn(config.MsgBreakerState,
					config.LogKeyComponent, config.CompFetcher,
					config.LogKeyBreaker, name,
					config.LogKeyFrom, from.String(),
					config.LogKeyTo, to.String(),
				)
				metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
			},
		}),
	}
}

// isSuccessful keeps client-side rejections (4xx) and caller cancellations from
// tripping the breaker; only transport failures and 5xx count.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Status >= http.StatusBadRequest && ae.Status < http.StatusInternalServerError {
		return true
	}
	return false
}

// Get performs a single GET attempt. Non-2xx answers become an UpstreamFailure
// carrying the upstream status and body text. An open breaker is reported as an
// UpstreamFailure with status 503.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings may carry API keys; never log them.
	safeURL := u.Scheme + "://" + u.Host + u.Path
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyBreaker, f.Name),
		slog.String(config.LogKeyURL, safeURL),
	)

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.do(ctx, rawURL, log)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn(config.MsgBreakerRejected, config.LogKeyError, err)
			metrics.RecordUpstream(f.Name, metrics.OutcomeRejected, time.Since(start))
			return nil, &apperr.Error{
				Kind:   apperr.UpstreamFailure,
				Msg:    config.ErrUpstreamOpen,
				Status: http.StatusServiceUnavailable,
				Err:    err,
			}
		}
		metrics.RecordUpstream(f.Name, metrics.OutcomeError, time.Since(start))
		return nil, err
	}

	metrics.RecordUpstream(f.Name, metrics.OutcomeSuccess, time.Since(start))
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string, log *slog.Logger) ([]byte, error) {
	log.Debug(config.MsgUpstreamRequest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrUpstreamRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set("Accept", config.MimeJSON)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamFailure, config.ErrUpstreamNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Protect against large payloads.
	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxHTTPResponseSize))
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamFailure, config.ErrUpstreamNetwork, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		log.Warn(config.MsgUpstreamStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = fmt.Sprintf("%s: %d %s", config.ErrUpstreamStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil, apperr.Upstream(resp.StatusCode, text)
	}

	log.Debug(config.MsgUpstreamDone, slog.Int(config.LogKeySizeBytes, len(body)))
	return body, nil
}
