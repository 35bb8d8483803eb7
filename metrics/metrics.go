// Package metrics exports allocation statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/randalmurphal/ctxbudget/budget"
)

const namespace = "ctxbudget"

// Collector records every allocation it observes. It implements
// budget.Observer.
type Collector struct {
	allocations   *prometheus.CounterVec
	truncated     *prometheus.CounterVec
	tokensTrimmed prometheus.Counter
	outputTokens  prometheus.Histogram
	overCeiling   prometheus.Counter
}

// NewCollector creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. Registering twice with the same
// registry panics.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		allocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "allocations_total",
				Help:      "Total number of allocations, by whether trimming ran",
			},
			[]string{"path"},
		),

		truncated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sections_truncated_total",
				Help:      "Total number of sections shortened to fit the ceiling",
			},
			[]string{"priority"},
		),

		tokensTrimmed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_trimmed_total",
				Help:      "Estimated tokens removed by trimming",
			},
		),

		outputTokens: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "output_tokens",
				Help:      "Estimated tokens in each assembled context",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
			},
		),

		overCeiling: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "over_ceiling_total",
				Help:      "Allocations still above the ceiling after trimming",
			},
		),
	}
}

// ObserveAllocation implements budget.Observer.
func (c *Collector) ObserveAllocation(res *budget.Result) {
	path := "fast"
	if res.SlowPath {
		path = "slow"
	}
	c.allocations.WithLabelValues(path).Inc()

	for _, o := range res.Outcomes {
		if o.Truncated {
			c.truncated.WithLabelValues(o.Priority.String()).Inc()
		}
	}
	if trimmed := res.TokensTrimmed(); trimmed > 0 {
		c.tokensTrimmed.Add(float64(trimmed))
	}
	c.outputTokens.Observe(float64(res.FinalTokens))
	if res.OverBudget {
		c.overCeiling.Inc()
	}
}
