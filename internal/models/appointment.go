package models

import "time"

type Appointment struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id,omitempty"`
	Title       string    `json:"title"`
	SellerID    string    `json:"seller_id"`
	SellerName  string    `json:"seller_name,omitempty"`
	SellerEmail string    `json:"seller_email"`
	BuyerID     string    `json:"buyer_id"`
	BuyerName   string    `json:"buyer_name,omitempty"`
	BuyerEmail  string    `json:"buyer_email"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TimeSlot is a bookable interval produced by the slot generator.
// Slots are never persisted; they exist between generation and selection.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
