package retry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckRetry_RetriesOnRateLimit(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusTooManyRequests}
	retry, err := checkRetry(context.Background(), resp, nil)
	assert.NoError(t, err)
	assert.True(t, retry)
}

func TestCheckRetry_RetriesOn5xx(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadGateway}
	retry, _ := checkRetry(context.Background(), resp, nil)
	assert.True(t, retry)
}

func TestCheckRetry_NoRetryOn4xx(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusNotFound}
	retry, _ := checkRetry(context.Background(), resp, nil)
	assert.False(t, retry)
}

func TestJitteredBackoff_CapsAtMax(t *testing.T) {
	d := jitteredBackoff(5*time.Second, 60*time.Second, 10, nil)
	assert.LessOrEqual(t, d, 60*time.Second)
	assert.GreaterOrEqual(t, d, 5*time.Second)
}

func TestJitteredBackoff_HonorsRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"10"}}}
	d := jitteredBackoff(5*time.Second, 60*time.Second, 0, resp)
	assert.Equal(t, 10*time.Second, d)
}
