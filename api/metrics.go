package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeNoData     = "no_data"
	outcomeError      = "error"
)

// metrics counts dashboard recomputations by outcome.
type metrics struct {
	registry     *prometheus.Registry
	recomputes   *prometheus.CounterVec
	tableRecords prometheus.Gauge
}

func newMetrics(tableRecords int) *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &metrics{
		registry: reg,
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_dashboard_recomputes_total",
			Help: "Dashboard recomputations by outcome.",
		}, []string{"outcome"}),
		tableRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sales_canonical_table_records",
			Help: "Records in the loaded canonical sales table.",
		}),
	}
	m.tableRecords.Set(float64(tableRecords))
	return m
}

func (m *metrics) observe(outcome string) {
	m.recomputes.WithLabelValues(outcome).Inc()
}
