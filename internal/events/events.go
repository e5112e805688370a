package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventAppointmentCreated  = "appointment_created"
	EventAvailabilityUpdated = "availability_updated"
	EventInviteCreated       = "invite_created"
	EventProfileCreated      = "profile_created"
)

// AppointmentEventPayload is the booking snapshot handed to event consumers.
type AppointmentEventPayload struct {
	AppointmentID string    `json:"appointment_id"`
	SellerID      string    `json:"seller_id"`
	SellerName    string    `json:"seller_name,omitempty"`
	BuyerID       string    `json:"buyer_id"`
	BuyerName     string    `json:"buyer_name,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	MeetingLink   string    `json:"meeting_link,omitempty"`
}

// AvailabilityEventPayload describes a template change.
type AvailabilityEventPayload struct {
	SellerID  string          `json:"seller_id"`
	Days      map[string]bool `json:"days"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
