// Package observability provides Prometheus metrics for the settlement API.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirage-sim/settlement-engine/settlement"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	// Settlement metrics
	SettlementsTotal   *prometheus.CounterVec
	SettlementDuration *prometheus.HistogramVec
	WarningsTotal      *prometheus.CounterVec
	NetResult          *prometheus.HistogramVec

	// Archive metrics
	RunsArchived prometheus.Counter
	RunsPurged   prometheus.Counter

	// Health metrics
	LastSuccessfulSettlement prometheus.Gauge
}

// NewMetrics creates a Metrics instance on its own registry, so several
// servers (or tests) can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mirage"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SettlementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "runs_total",
			Help:      "Total number of settlement requests by edition and outcome",
		}, []string{"edition", "outcome"}),
		SettlementDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Settlement pipeline duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"edition"}),
		WarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "warnings_total",
			Help:      "Total number of business-rule warnings by stage and kind",
		}, []string{"stage", "kind"}),
		NetResult: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "net_result_keur",
			Help:      "Net result of settled quarters in K€",
			Buckets:   []float64{-5000, -1000, -500, -100, 0, 100, 500, 1000, 5000},
		}, []string{"edition"}),

		RunsArchived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "runs_saved_total",
			Help:      "Total number of settlement runs archived",
		}),
		RunsPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "runs_purged_total",
			Help:      "Total number of archived runs removed by retention",
		}),

		LastSuccessfulSettlement: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_settlement_timestamp",
			Help:      "Unix timestamp of last successful settlement",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome labels for SettlementsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // structural input error
	OutcomeFailed   = "failed"
)

// RecordSettlement records one settlement attempt. A nil result with a nil
// error is treated as a failure.
func (m *Metrics) RecordSettlement(editionName string, elapsed time.Duration, result *settlement.Result, err error) {
	switch {
	case err != nil && settlement.IsClientError(err):
		m.SettlementsTotal.WithLabelValues(editionName, OutcomeRejected).Inc()
		return
	case err != nil || result == nil:
		m.SettlementsTotal.WithLabelValues(editionName, OutcomeFailed).Inc()
		return
	}

	m.SettlementsTotal.WithLabelValues(editionName, OutcomeOK).Inc()
	m.SettlementDuration.WithLabelValues(editionName).Observe(elapsed.Seconds())
	net, _ := result.Income.NetResult.Float64()
	m.NetResult.WithLabelValues(editionName).Observe(net)
	for _, w := range result.Warnings {
		m.WarningsTotal.WithLabelValues(string(w.Stage), string(w.Kind)).Inc()
	}
	m.LastSuccessfulSettlement.SetToCurrentTime()
}

// RecordArchived increments the archived runs counter.
func (m *Metrics) RecordArchived() {
	m.RunsArchived.Inc()
}

// RecordPurged adds runs removed by the retention scheduler.
func (m *Metrics) RecordPurged(n int) {
	m.RunsPurged.Add(float64(n))
}
