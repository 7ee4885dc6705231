package entity

import "time"

// Content is a scheduled display item. (KioskID, Title) identifies the slot:
// writing the same slot again updates the row instead of adding one.
type Content struct {
	ID            string    `db:"id" json:"id"`
	KioskID       string    `db:"kiosk_id" json:"kioskId"`
	Title         string    `db:"title" json:"title"`
	Body          string    `db:"body" json:"contentBody"`
	ContentType   string    `db:"content_type" json:"contentType"`
	ScheduledTime time.Time `db:"scheduled_time" json:"scheduledTime"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}
