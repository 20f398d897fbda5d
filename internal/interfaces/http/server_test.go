package http

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/venuematch/internal/ops"
)

type stubLastRun struct {
	result ops.Result
	have   bool
}

func (s stubLastRun) LastRun() (ops.Result, bool) { return s.result, s.have }

func startTestServer(t *testing.T, runs LastRunProvider) *Server {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Port = freePort(t)

	s, err := NewServer(cfg, zerolog.Nop(), runs)
	require.NoError(t, err)
	go s.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	time.Sleep(20 * time.Millisecond)
	return s
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestHealthz_NoLastRun(t *testing.T) {
	s := startTestServer(t, stubLastRun{})

	resp, err := http.Get("http://" + s.GetAddress() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed healthResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, "ok", parsed.Status)
	assert.False(t, parsed.HaveLastRun)
}

func TestHealthz_DegradedOnUnhealthyLastRun(t *testing.T) {
	s := startTestServer(t, stubLastRun{
		have:   true,
		result: ops.Result{RunID: "run-1", KPI: ops.KPISummary{Healthy: false}, StaleQuoteVenues: nil},
	})

	resp, err := http.Get("http://" + s.GetAddress() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed healthResponse
	require.NoError(t, json.Unmarshal(body, &parsed))
	assert.Equal(t, "degraded", parsed.Status)
	assert.Equal(t, "run-1", parsed.LastRunID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint_ServesPrometheusText(t *testing.T) {
	s := startTestServer(t, nil)

	resp, err := http.Get("http://" + s.GetAddress() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNotFound_ReturnsJSON(t *testing.T) {
	s := startTestServer(t, nil)

	resp, err := http.Get("http://" + s.GetAddress() + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
