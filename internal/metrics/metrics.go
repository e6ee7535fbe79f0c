package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubscriptionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_total",
			Help: "Total number of subscription operations.",
		},
		[]string{"status"},
	)
	NotificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notifications sent.",
		},
		[]string{"status"},
	)
	ParseCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_requests_total",
			Help: "Total number of announcement-page checks.",
		},
		[]string{"service", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(SubscriptionCounter, NotificationCounter, ParseCounter)
}

// Serve exposes /metrics on the given address; it blocks until the listener
// fails.
func Serve(addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if logger != nil {
		logger.Info("metrics server listening", "addr", addr)
	}
	return http.ListenAndServe(addr, mux)
}
