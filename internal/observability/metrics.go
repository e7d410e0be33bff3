// Package observability holds the Prometheus instrumentation for the
// dashboard backend.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reference store and aggregation engine.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec   // labels: op={tracts,series,cbsas}, outcome={success,error}
	QueryDuration *prometheus.HistogramVec // labels: op
	CacheLookups  *prometheus.CounterVec   // labels: result={hit,miss}
	RowsLoaded    *prometheus.GaugeVec     // labels: table
}

// NewMetrics creates and registers the metric set with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gfc_explorer",
			Name:      "queries_total",
			Help:      "Aggregation queries by operation and outcome.",
		}, []string{"op", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gfc_explorer",
			Name:      "query_duration_seconds",
			Help:      "Duration of aggregation queries against the reference store.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gfc_explorer",
			Name:      "result_cache_lookups_total",
			Help:      "Aggregation result cache lookups by result.",
		}, []string{"result"}),
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gfc_explorer",
			Name:      "reference_rows_loaded",
			Help:      "Rows loaded per reference table at startup.",
		}, []string{"table"}),
	}

	reg.MustRegister(m.QueriesTotal, m.QueryDuration, m.CacheLookups, m.RowsLoaded)
	return m
}

// ObserveQuery records one query outcome.
func (m *Metrics) ObserveQuery(op string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.QueriesTotal.WithLabelValues(op, outcome).Inc()
	m.QueryDuration.WithLabelValues(op).Observe(seconds)
}

// ObserveCache records one cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetRowsLoaded records the startup row counts.
func (m *Metrics) SetRowsLoaded(counts map[string]int64) {
	if m == nil {
		return
	}
	for table, n := range counts {
		m.RowsLoaded.WithLabelValues(table).Set(float64(n))
	}
}
