package entity

import "time"

// Interaction is a raw device-interaction record. Optional columns are
// pointers so NULL survives the round trip.
type Interaction struct {
	ID          string    `db:"id"`
	KioskID     *string   `db:"kiosk_id"`
	UserID      *string   `db:"user_id"`
	Action      string    `db:"action"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// SecurityEvent is the normalized, read-only view of an Interaction.
type SecurityEvent struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
