// Package metrics exposes generator activity as Prometheus collectors.
//
// Each Recorder owns its registry so tests and repeated CLI runs never collide on
// the global default registerer.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"releve/internal/core"
	"releve/internal/generator"
)

const namespace = "releve"

// Recorder implements generator.Observer.
type Recorder struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	rejected     prometheus.Counter
	periods      prometheus.Counter
	closing      prometheus.Gauge
	draws        prometheus.Histogram
}

var _ generator.Observer = (*Recorder)(nil)

func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_generated_total",
			Help:      "Transactions generated, by direction.",
		}, []string{"direction"}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_rejected_total",
			Help:      "Category draws rejected because the category had reached its cap.",
		}),
		periods: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "periods_generated_total",
			Help:      "Periods fully sampled and sequenced.",
		}),
		closing: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "closing_balance_euros",
			Help:      "Closing balance of the last sequenced period.",
		}),
		draws: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draws_per_period",
			Help:      "Category draws needed to fill one period.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 5000},
		}),
	}
}

// ObserveSample records draw statistics. It is called even when sampling fails.
func (r *Recorder) ObserveSample(_ core.Period, stats generator.SampleStats) {
	r.rejected.Add(float64(stats.Rejected))
	r.draws.Observe(float64(stats.Draws))
}

func (r *Recorder) ObserveBatch(batch core.Batch) {
	for _, t := range batch.Transactions {
		dir := core.Debit
		if t.Amount.Cents > 0 {
			dir = core.Credit
		}
		r.transactions.WithLabelValues(string(dir)).Inc()
	}
	r.periods.Inc()
	r.closing.Set(batch.Closing.Euros())
}

// Gatherer returns the recorder's registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every collector in the text exposition format, for the
// node_exporter textfile collector. The write goes through a temporary file.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
