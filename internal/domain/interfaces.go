package domain

import (
	"context"
	"time"

	"slotbook/internal/models"
)

// Store is the persistence contract the services depend on.
type Store interface {
	EnsureUser(ctx context.Context, identity *models.Identity) (*models.User, bool, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	EnsureSeller(ctx context.Context, seller *models.Seller) (*models.Seller, bool, error)
	GetSeller(ctx context.Context, id string) (*models.Seller, error)
	ListSellers(ctx context.Context) ([]*models.Seller, error)

	GetAvailability(ctx context.Context, sellerID string) (*models.Availability, error)
	UpsertAvailability(ctx context.Context, av *models.Availability) error

	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, participantID string) ([]*models.Appointment, error)
	ListAppointmentsByRange(ctx context.Context, start, end time.Time) ([]*models.Appointment, error)
	SetAppointmentEvent(ctx context.Context, id, eventID, meetingLink string) error
}

// SessionRepository stores issued session tokens.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// CalendarEvent is the payload for the external calendar side-call.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// CalendarResult carries the server-assigned event id and, when a
// conference was provisioned, a meeting join link.
type CalendarResult struct {
	EventID     string
	MeetingLink string
}

// CalendarClient creates calendar events with a meeting link. Failure of
// this call never affects booking outcomes.
type CalendarClient interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (*CalendarResult, error)
}

// InviteScheduler queues the best-effort calendar invite for an
// appointment that was just booked.
type InviteScheduler interface {
	EnqueueInvite(ctx context.Context, appointmentID string) error
}
