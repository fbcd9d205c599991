package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fumotion_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fumotion_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	bookingAdmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fumotion_booking_admissions_total",
			Help: "Booking admission attempts by outcome",
		},
		[]string{"outcome"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fumotion_booking_transitions_total",
			Help: "Booking status changes by target status",
		},
		[]string{"status"},
	)

	admissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fumotion_booking_admission_duration_seconds",
			Help:    "Time spent inside the admission transaction",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

// TrackHTTP records one finished request.
func TrackHTTP(route, method, status string, d time.Duration) {
	httpRequests.WithLabelValues(route, method, status).Inc()
	httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// TrackAdmission records an admission outcome such as "admitted" or "capacity_exceeded".
func TrackAdmission(outcome string, d time.Duration) {
	bookingAdmissions.WithLabelValues(outcome).Inc()
	admissionDuration.Observe(d.Seconds())
}

func TrackBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}
