package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RegistersWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)
	require.NotNil(t, m)

	m.ObserveOrchestratorRun("CRYPTO_DAILY", 250*time.Millisecond)
	m.ObserveOpsRun(2*time.Second, true)
	m.SetWatchlistSize("kalshi", 42)
	m.SetQuoteFresh("polymarket", false)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSetWatchlistSize_ReflectsLatestValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.SetWatchlistSize("kalshi", 10)
	m.SetWatchlistSize("kalshi", 25)

	metric := &dto.Metric{}
	gauge, err := m.WatchlistSize.GetMetricWithLabelValues("kalshi")
	require.NoError(t, err)
	require.NoError(t, gauge.Write(metric))
	assert.Equal(t, 25.0, metric.GetGauge().GetValue())
}
