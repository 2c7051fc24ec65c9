// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	FeedFetchesTotal     prometheus.Counter
	FeedFetchErrorsTotal prometheus.Counter

	// Session metrics
	SessionsCreated prometheus.Counter
	SessionsClosed  prometheus.Counter

	// Swap metrics
	SwapsSubmitted prometheus.Counter
	SwapsRejected  prometheus.Counter

	// Conversion metrics
	ConversionsTotal prometheus.Counter
}

// New creates and registers all metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FeedFetchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_feed_fetches_total",
			Help: "Total number of price feed fetch attempts",
		}),
		FeedFetchErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_feed_fetch_errors_total",
			Help: "Total number of failed price feed fetches",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_sessions_created_total",
			Help: "Total number of swap sessions created",
		}),
		SessionsClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_sessions_closed_total",
			Help: "Total number of swap sessions closed",
		}),
		SwapsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_submissions_total",
			Help: "Total number of swap submissions accepted for settlement",
		}),
		SwapsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_submissions_rejected_total",
			Help: "Total number of swap submissions rejected by validation",
		}),
		ConversionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "swap_conversions_total",
			Help: "Total number of conversions served",
		}),
	}
}

// Handler returns the HTTP handler exposing registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
