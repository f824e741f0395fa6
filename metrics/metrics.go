// Package metrics exposes prometheus instrumentation for the HTTP surface
// and the payment pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's prometheus collectors
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	DepositCallbacks   *prometheus.CounterVec
	DrawsSettled       prometheus.Counter
	PrizesPaid         prometheus.Counter
	WithdrawalsCreated prometheus.Counter
	WithdrawalsDecided *prometheus.CounterVec
}

// New registers the application collectors on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prizedraw_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prizedraw_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		DepositCallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prizedraw_deposit_callbacks_total",
			Help: "Processed deposit callbacks by outcome",
		}, []string{"outcome"}),
		DrawsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "prizedraw_draws_settled_total",
			Help: "Draws settled",
		}),
		PrizesPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "prizedraw_prizes_paid_total",
			Help: "Prize positions paid out",
		}),
		WithdrawalsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "prizedraw_withdrawals_created_total",
			Help: "Withdrawal requests created",
		}),
		WithdrawalsDecided: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prizedraw_withdrawals_decided_total",
			Help: "Withdrawal reviews reaching a terminal state",
		}, []string{"status"}),
	}
}

// GinMiddleware records request counts and latencies per route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method,
			strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
