package models

import "time"

// InviteTask represents a queued calendar-invite job for an appointment.
type InviteTask struct {
	ID            int64      `json:"id"`
	AppointmentID string     `json:"appointment_id"`
	Status        string     `json:"status"`
	RetryCount    int        `json:"retry_count"`
	LastError     *string    `json:"last_error"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at"`
	NextRetryAt   *time.Time `json:"next_retry_at"`
}
