package entity

import "time"

// DefaultRole is assigned to users created without an explicit role.
const DefaultRole = "KioskUser"

// User represents an account row in the `users` table. Email is stored
// lower-cased and is unique; it is the login identifier.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
