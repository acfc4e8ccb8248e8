package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders accepted at checkout.",
	})

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Order status changes by source and target status.",
		},
		[]string{"from", "to"},
	)

	OrdersPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_purged_total",
		Help: "Orders removed by cleanup.",
	})

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by a rate limit policy.",
		},
		[]string{"policy"},
	)

	DegradedReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_degraded_reads_total",
			Help: "Reads served from the bundled snapshot because the store failed.",
		},
		[]string{"collection"},
	)

	AdminLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_admin_logins_total",
			Help: "Admin sign-in attempts by outcome.",
		},
		[]string{"result"},
	)

	EventPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_event_publish_failures_total",
		Help: "Order events that could not be published.",
	})
)

func init() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(OrdersPlaced)
	prometheus.MustRegister(OrderTransitions)
	prometheus.MustRegister(OrdersPurged)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(DegradedReads)
	prometheus.MustRegister(AdminLogins)
	prometheus.MustRegister(EventPublishFailures)
}
