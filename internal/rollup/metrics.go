package rollup

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run outcomes. A nil *Metrics records nothing.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	bucketsTotal    *prometheus.CounterVec
	droppedTotal    *prometheus.CounterVec
	lastSuccessUnix *prometheus.GaugeVec
}

// NewMetrics creates the rollup collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cost_rollup",
				Name:      "runs_total",
				Help:      "Rollup runs by schema and result (ok or the failing stage)",
			},
			[]string{"schema", "result"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cost_rollup",
				Name:      "run_duration_seconds",
				Help:      "Wall time of a rollup run",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
			},
			[]string{"schema"},
		),
		bucketsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cost_rollup",
				Name:      "buckets_published_total",
				Help:      "Summary rows published",
			},
			[]string{"schema", "report_type"},
		),
		droppedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cost_rollup",
				Name:      "unmatched_line_items_total",
				Help:      "Line items dropped because their product was missing",
			},
			[]string{"schema"},
		),
		lastSuccessUnix: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cost_rollup",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful publish",
			},
			[]string{"schema"},
		),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.bucketsTotal, m.droppedTotal, m.lastSuccessUnix)
	return m
}

func (m *Metrics) observeSuccess(res *RunResult) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(res.Schema, "ok").Inc()
	m.runDuration.WithLabelValues(res.Schema).Observe(res.Duration.Seconds())
	m.droppedTotal.WithLabelValues(res.Schema).Add(float64(res.UnmatchedItems))
	for report, n := range res.bucketsByReport() {
		m.bucketsTotal.WithLabelValues(res.Schema, report).Add(float64(n))
	}
	m.lastSuccessUnix.WithLabelValues(res.Schema).Set(float64(res.StartedAt.Add(res.Duration).Unix()))
}

func (m *Metrics) observeFailure(schema string, stage Stage, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(schema, string(stage)).Inc()
	m.runDuration.WithLabelValues(schema).Observe(elapsed.Seconds())
}
