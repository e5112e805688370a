package events

import (
	"slotbook/internal/metrics"

	"github.com/rs/zerolog"
)

// KnownTypes lists every event type the services publish.
var KnownTypes = []string{
	EventAppointmentCreated,
	EventAvailabilityUpdated,
	EventInviteCreated,
	EventProfileCreated,
}

// RegisterAuditTrail subscribes an observer for every known event type
// that writes the event to the log and bumps the per-type counter.
func RegisterAuditTrail(bus *EventBus, logger *zerolog.Logger) {
	for _, eventType := range KnownTypes {
		et := eventType
		bus.Subscribe(et, func(event *Event) error {
			entry := logger.Info().Str("event_type", et).Time("created_at", event.CreatedAt)
			if len(event.Payload) > 0 {
				entry = entry.RawJSON("payload", event.Payload)
			}
			entry.Msg("domain event")
			metrics.IncEvent(et)
			return nil
		})
	}
}
