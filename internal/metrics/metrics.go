package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "bookings_total",
			Help:      "Successfully committed bookings.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	invites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "invites_total",
			Help:      "Calendar invite outcomes by status.",
		},
		[]string{"status"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "domain_events_total",
			Help:      "Domain events published on the in-process bus, by type.",
		},
		[]string{"type"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, bookingConflicts, invites, domainEvents)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking counts a committed booking.
func IncBooking() {
	bookings.Inc()
}

// IncBookingConflict counts a rejected double-booking attempt.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncInvite counts an invite outcome: sent, retried, failed or skipped.
func IncInvite(status string) {
	invites.WithLabelValues(status).Inc()
}

// IncEvent counts a published domain event by type.
func IncEvent(eventType string) {
	domainEvents.WithLabelValues(eventType).Inc()
}
