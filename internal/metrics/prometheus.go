// Package metrics contains middlewares and counters for metrics gathering.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP Requests total counter
var totalRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP Requests.",
	},
	[]string{"path"},
)

// HTTP Response status
var duration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_duration",
		Help: "HTTP Requests Duration",
	},
	[]string{"path"},
)

// Scheduling outcome counters
var appointmentsBooked = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_booked_total",
		Help: "Appointments successfully booked.",
	},
)

var appointmentsCancelled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_cancelled_total",
		Help: "Appointments cancelled.",
	},
)

var bookingConflicts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking attempts rejected because the slot was not available.",
	},
)

func init() {
	for _, collector := range []prometheus.Collector{totalRequests, duration, appointmentsBooked, appointmentsCancelled, bookingConflicts} {
		if err := prometheus.Register(collector); err != nil {
			panic(err)
		}
	}
}

// PrometheusMiddleware instruments the given request and register metrics.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(duration.WithLabelValues(r.RequestURI))
		next.ServeHTTP(w, r)
		totalRequests.WithLabelValues(r.RequestURI).Inc()
		timer.ObserveDuration()
	})
}

// CountAppointmentBooked registers a successful booking.
func CountAppointmentBooked() {
	appointmentsBooked.Inc()
}

// CountAppointmentCancelled registers a cancellation.
func CountAppointmentCancelled() {
	appointmentsCancelled.Inc()
}

// CountBookingConflict registers a booking attempt rejected over a conflict.
func CountBookingConflict() {
	bookingConflicts.Inc()
}
