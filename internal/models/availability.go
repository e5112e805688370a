package models

import "time"

// Availability is a seller's recurring weekly template: active weekdays
// plus a single daily working window. One record per seller.
type Availability struct {
	SellerID  string          `json:"seller_id"`
	Days      map[string]bool `json:"days"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	UpdatedAt time.Time       `json:"updated_at"`
}
