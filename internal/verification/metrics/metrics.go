package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the verification gate.
type Metrics struct {
	CodesIssued      prometheus.Counter
	DispatchFailures prometheus.Counter
	Verified         prometheus.Counter
	Mismatches       prometheus.Counter
}

// New creates and registers verification metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_verification_codes_issued_total",
			Help: "Total number of verification codes issued and dispatched",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_verification_dispatch_failures_total",
			Help: "Total number of failed verification code dispatches",
		}),
		Verified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_verification_success_total",
			Help: "Total number of successful code verifications",
		}),
		Mismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "instadoc_verification_mismatch_total",
			Help: "Total number of code verification mismatches",
		}),
	}
}
