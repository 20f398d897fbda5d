// Package retry wraps the taxonomy-maintenance external collaborator call
// (§4.8, §5, §9) in an exponential-backoff HTTP client plus a circuit
// breaker, so a flaky or down collaborator degrades the operational loop
// instead of hanging or retrying forever.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
)

// Config bounds one Client's retry/circuit behavior (§6 env vars).
type Config struct {
	MaxAttempts      int
	MaxDelay         time.Duration
	BaseDelay        time.Duration
	FailureThreshold uint32 // consecutive failures before the breaker trips open
	OpenTimeout      time.Duration
}

// DefaultConfig mirrors §9's defaults: capped attempts, 5s base / 60s max
// delay, 0-25% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:      5,
		MaxDelay:         60 * time.Second,
		BaseDelay:        5 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Client executes HTTP calls to the taxonomy-maintenance collaborator
// through a retryablehttp.Client, itself guarded by a gobreaker circuit
// breaker keyed on the collaborator's name.
type Client struct {
	http    *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker
}

// New builds a Client for one named external collaborator (§9).
func New(name string, cfg Config) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxAttempts
	rc.RetryWaitMin = cfg.BaseDelay
	rc.RetryWaitMax = cfg.MaxDelay
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.Backoff = jitteredBackoff
	rc.HTTPClient.Timeout = 10 * time.Second

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	})

	return &Client{http: rc, breaker: breaker}
}

// ErrCircuitOpen wraps gobreaker's open-state error so callers can match it
// without importing gobreaker directly.
var ErrCircuitOpen = errors.New("taxonomy maintenance circuit open")

// Do executes req through the retry-and-breaker stack.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	rreq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, err
	}
	rreq = rreq.WithContext(ctx)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, doErr := c.http.Do(rreq)
		if doErr != nil {
			return nil, doErr
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errFromStatus(resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.(*http.Response), nil
}

type statusError struct{ code int }

func (e statusError) Error() string { return http.StatusText(e.code) }

func errFromStatus(code int) error { return statusError{code: code} }

// checkRetry implements the 429/408/5xx/network-error retry predicate
// (§5/§9); 4xx other than 408/429 never retries.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp == nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true, nil
	}
	if resp.StatusCode >= 500 {
		return true, nil
	}
	return false, nil
}

// jitteredBackoff honors a Retry-After response header (delay-seconds or
// HTTP-date) when present, otherwise applies exponential backoff with 0-25%
// jitter, capped at max.
func jitteredBackoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := time.ParseDuration(ra + "s"); err == nil {
				return clampDuration(secs, min, max)
			}
			if at, err := http.ParseTime(ra); err == nil {
				return clampDuration(time.Until(at), min, max)
			}
		}
	}
	backoff := min * (1 << attemptNum)
	if backoff > max || backoff <= 0 {
		backoff = max
	}
	jitter := time.Duration(rand.Int63n(int64(backoff) / 4))
	return clampDuration(backoff+jitter, min, max)
}

func clampDuration(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}
