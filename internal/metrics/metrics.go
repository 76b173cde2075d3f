// Package metrics holds the Prometheus collectors exported by the POS service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

type Collectors struct {
	PaymentsRecorded *prometheus.CounterVec
	AmountMismatches prometheus.Counter
	OrdersClosed     prometheus.Counter
	BillDuration     *prometheus.HistogramVec
	RateCacheResults *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the service collectors on a fresh registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegisterer(reg, reg)
}

// NewWithRegisterer registers the service collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collectors {
	c := &Collectors{
		PaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments appended to the ledger, by payment mode.",
		}, []string{"payment_mode"}),
		AmountMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_mismatches_total",
			Help:      "Payments rejected because the amount did not match the bill.",
		}),
		OrdersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_closed_total",
			Help:      "Orders closed by a payment.",
		}),
		BillDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bill_computation_seconds",
			Help:      "Time to build a bill, including lookups.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		RateCacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_results_total",
			Help:      "Rate cache lookups by result.",
		}, []string{"result"}),
		gatherer: gatherer,
	}

	reg.MustRegister(
		c.PaymentsRecorded,
		c.AmountMismatches,
		c.OrdersClosed,
		c.BillDuration,
		c.RateCacheResults,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
