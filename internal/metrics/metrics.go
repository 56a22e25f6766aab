package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ecanteen"

var (
	PasscodesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passcodes_issued_total",
			Help:      "Passcodes stored and handed to the mailer, by purpose and result",
		},
		[]string{"purpose", "result"},
	)
	PasscodeChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passcode_checks_total",
			Help:      "Passcode validations by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)
	PasscodesSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passcodes_swept_total",
			Help:      "Expired passcodes removed by the maintenance sweep",
		},
	)
	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders persisted",
		},
	)
	OrderNumberFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_number_fallbacks_total",
			Help:      "Order numbers built from the clock because counting failed",
		},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		PasscodesIssued,
		PasscodeChecks,
		PasscodesSwept,
		OrdersCreated,
		OrderNumberFallbacks,
		HTTPLatency,
	)
}
