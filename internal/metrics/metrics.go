// Package metrics holds the Prometheus metric definitions the read-only
// interfaces/http server exposes at /metrics, in the teacher's
// NewMetricsRegistry + prometheus.MustRegister idiom
// (internal/interfaces/http/metrics.go).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric the operational loop and orchestrator emit.
type Registry struct {
	ScoreHistogram   *prometheus.HistogramVec
	CandidatesFound  *prometheus.CounterVec
	HardGatePassed   *prometheus.CounterVec
	LinksSuggested   *prometheus.CounterVec
	LinksConfirmed   *prometheus.CounterVec
	LinksRejected    *prometheus.CounterVec
	OrchestratorRun  *prometheus.HistogramVec
	OpsRunDuration   prometheus.Histogram
	OpsRunsTotal     *prometheus.CounterVec
	WatchlistSize    *prometheus.GaugeVec
	QuoteFreshStatus *prometheus.GaugeVec
}

// NewRegistry builds and registers every metric against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		ScoreHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venuematch_score_distribution",
				Help:    "Distribution of candidate match scores by topic",
				Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
			},
			[]string{"topic"},
		),
		CandidatesFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_candidates_found_total",
				Help: "Candidate pairs found by topic before hard-gate filtering",
			},
			[]string{"topic"},
		),
		HardGatePassed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_hard_gate_passed_total",
				Help: "Candidate pairs that passed every hard gate, by topic",
			},
			[]string{"topic"},
		),
		LinksSuggested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_links_suggested_total",
				Help: "Links written with status=suggested, by topic",
			},
			[]string{"topic"},
		),
		LinksConfirmed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_links_confirmed_total",
				Help: "Links written with status=confirmed, by topic and source",
			},
			[]string{"topic", "source"},
		),
		LinksRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_links_rejected_total",
				Help: "Links written with status=rejected, by topic and source",
			},
			[]string{"topic", "source"},
		),
		OrchestratorRun: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venuematch_orchestrator_run_seconds",
				Help:    "Wall-clock duration of one orchestrator topic pass",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
		OpsRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "venuematch_ops_run_seconds",
				Help:    "Wall-clock duration of one ops:run invocation",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		OpsRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuematch_ops_runs_total",
				Help: "ops:run invocations by health outcome",
			},
			[]string{"healthy"},
		),
		WatchlistSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "venuematch_watchlist_size",
				Help: "Current watchlist entry count by venue",
			},
			[]string{"venue"},
		),
		QuoteFreshStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "venuematch_quote_fresh",
				Help: "1 if quotes were observed for venue in the last 5 minutes, else 0",
			},
			[]string{"venue"},
		),
	}

	reg.MustRegister(
		m.ScoreHistogram, m.CandidatesFound, m.HardGatePassed,
		m.LinksSuggested, m.LinksConfirmed, m.LinksRejected,
		m.OrchestratorRun, m.OpsRunDuration, m.OpsRunsTotal,
		m.WatchlistSize, m.QuoteFreshStatus,
	)
	return m
}

// ObserveOrchestratorRun records one topic pass's duration.
func (m *Registry) ObserveOrchestratorRun(topic string, d time.Duration) {
	m.OrchestratorRun.WithLabelValues(topic).Observe(d.Seconds())
}

// ObserveOpsRun records one ops:run invocation's duration and outcome.
func (m *Registry) ObserveOpsRun(d time.Duration, healthy bool) {
	m.OpsRunDuration.Observe(d.Seconds())
	label := "false"
	if healthy {
		label = "true"
	}
	m.OpsRunsTotal.WithLabelValues(label).Inc()
}

// SetWatchlistSize records the current watchlist length for venue.
func (m *Registry) SetWatchlistSize(venue string, size int) {
	m.WatchlistSize.WithLabelValues(venue).Set(float64(size))
}

// SetQuoteFresh records whether venue had recent quotes.
func (m *Registry) SetQuoteFresh(venue string, fresh bool) {
	v := 0.0
	if fresh {
		v = 1.0
	}
	m.QuoteFreshStatus.WithLabelValues(venue).Set(v)
}
