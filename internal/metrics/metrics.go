package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "second_serving",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	donationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "donations",
			Name:      "created_total",
			Help:      "Donations created, by routing path.",
		},
		[]string{"path"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "donations",
			Name:      "transitions_total",
			Help:      "Applied donation status transitions.",
		},
		[]string{"from", "to"},
	)

	acceptConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "donations",
			Name:      "accept_conflicts_total",
			Help:      "Volunteer accepts that lost a race.",
		},
	)

	transitionConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "donations",
			Name:      "transition_conflicts_total",
			Help:      "Status transitions that lost a race, by attempted edge.",
		},
		[]string{"from", "to"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Outbound notifications by channel and result.",
		},
		[]string{"channel", "result"},
	)

	classifierFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "second_serving",
			Subsystem: "classifier",
			Name:      "fallbacks_total",
			Help:      "Classifications that failed and defaulted to everyone.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		donationsCreated,
		transitions,
		acceptConflicts,
		transitionConflicts,
		notifications,
		classifierFallbacks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// DonationCreated records the routing path: "auto", "donor_choice" or "unmatched".
func DonationCreated(path string) {
	donationsCreated.WithLabelValues(path).Inc()
}

func Transition(from, to string) {
	transitions.WithLabelValues(from, to).Inc()
}

func AcceptConflict() {
	acceptConflicts.Inc()
}

func TransitionConflict(from, to string) {
	transitionConflicts.WithLabelValues(from, to).Inc()
}

func Notification(channel string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	notifications.WithLabelValues(channel, result).Inc()
}

func ClassifierFallback() {
	classifierFallbacks.Inc()
}
