package models

import "time"

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

const (
	StatusConfirmed = "confirmed"
)

const (
	TaskStatusPending = "pending"
	TaskStatusRetry   = "retry"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)

const (
	// SlotDuration is the fixed length of every bookable slot.
	SlotDuration = 30 * time.Minute

	// DefaultTimezone is the reference zone for slot arithmetic and for
	// the calendar side-call. One zone everywhere, so weekday derivation
	// and slot construction can never disagree.
	DefaultTimezone = "Asia/Kolkata"

	// DefaultSessionTTL is how long an issued session token lives.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultSpecialty is assigned to sellers created without one.
	DefaultSpecialty = "General Consultation"

	// RateLimitRequests / RateLimitWindow bound session-issuing abuse.
	RateLimitRequests = 20
	RateLimitWindow   = 60 // seconds
)
