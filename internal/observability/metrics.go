// Package observability exposes Prometheus metrics for the settlement host.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "landau"

// Metrics holds all settlement host metrics.
type Metrics struct {
	registry *prometheus.Registry

	OrdersSubmitted  *prometheus.CounterVec
	LiquidityChanges *prometheus.CounterVec
	Settlements      *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	VolumeIn         *prometheus.CounterVec
	FeesCollected    *prometheus.CounterVec
	OrdersPerBatch   prometheus.Histogram
	FeeRatio         prometheus.Histogram
	LastSettledSlot  prometheus.Gauge
	SchedulerSweeps  prometheus.Counter
	SettleDuration   prometheus.Histogram
}

// NewMetrics registers every metric on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OrdersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "orders_submitted_total",
			Help:      "Total number of orders folded into a batch by direction",
		}, []string{"direction"}),
		LiquidityChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "liquidity_changes_total",
			Help:      "Total number of liquidity changes by operation",
		}, []string{"operation"}),
		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "settlements_total",
			Help:      "Total number of settled batches by direction",
		}, []string{"direction"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "failures_total",
			Help:      "Total number of rejected operations by operation and error kind",
		}, []string{"operation", "kind"}),
		VolumeIn: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "volume_in_total",
			Help:      "Netted amount paid into pools by asset",
		}, []string{"asset"}),
		FeesCollected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "fees_collected_total",
			Help:      "Fees retained by pools by asset",
		}, []string{"asset"}),
		OrdersPerBatch: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "orders_per_batch",
			Help:      "Number of orders netted into each settled batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		FeeRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "fee_ratio",
			Help:      "Fee as a share of the frictionless output",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.99},
		}),
		LastSettledSlot: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "last_settled_slot",
			Help:      "Slot of the most recent settlement",
		}),
		SchedulerSweeps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "sweeps_total",
			Help:      "Total number of scheduler passes over the pool list",
		}),
		SettleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Wall time of one settle operation including persistence",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
