package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	updatesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "updates_total",
			Help:      "Telegram updates by kind.",
		},
		[]string{"kind"},
	)

	backendCalls = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roomdesk",
			Name:      "backend_call_duration_seconds",
			Help:      "Booking backend call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	bookingActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "booking_actions_total",
			Help:      "Booking mutations issued by users and admins.",
		},
		[]string{"action", "outcome"},
	)

	errorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomdesk",
			Name:      "errors_total",
			Help:      "Handler errors, including recovered panics.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(updatesProcessed, backendCalls, bookingActions, errorsTotal)
	})
}

// IncUpdate increments the counter for an update kind (message, callback).
func IncUpdate(kind string) {
	updatesProcessed.WithLabelValues(kind).Inc()
}

// ObserveBackendCall records one backend round-trip.
func ObserveBackendCall(endpoint, method, status string, d time.Duration) {
	backendCalls.WithLabelValues(endpoint, method, status).Observe(d.Seconds())
}

// IncBookingAction counts a booking mutation attempt by outcome (ok, error).
func IncBookingAction(action, outcome string) {
	bookingActions.WithLabelValues(action, outcome).Inc()
}

// IncError counts a handler failure.
func IncError() {
	errorsTotal.Inc()
}
