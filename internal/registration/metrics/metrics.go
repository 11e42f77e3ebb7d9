// Package metrics exposes Prometheus counters for the registration saga.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Attempts  prometheus.Counter
	Completed prometheus.Counter
	Failed    *prometheus.CounterVec
	Duration  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Attempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_registration_attempts_total",
			Help: "Registration saga runs started.",
		}),
		Completed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_registration_completed_total",
			Help: "Registration saga runs that reached Complete.",
		}),
		Failed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "instadoc_registration_failed_total",
			Help: "Registration saga runs that failed, by step.",
		}, []string{"step"}),
		Duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "instadoc_registration_duration_seconds",
			Help:    "Wall time of registration saga runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewForRegistry registers on a private registry. For tests.
func NewForRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Attempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_registration_attempts_total",
			Help: "Registration saga runs started.",
		}),
		Completed: factory.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_registration_completed_total",
			Help: "Registration saga runs that reached Complete.",
		}),
		Failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instadoc_registration_failed_total",
			Help: "Registration saga runs that failed, by step.",
		}, []string{"step"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "instadoc_registration_duration_seconds",
			Help:    "Wall time of registration saga runs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
