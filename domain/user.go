package domain

import "time"

// UserStatus is the account state checked by the session gate.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// Toggled returns the opposite status.
func (s UserStatus) Toggled() UserStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// User represents a registered account with its geolocation metadata.
// Latitude and Longitude keep the text the client registered with.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Address      string     `json:"address"`
	Latitude     string     `json:"latitude"`
	Longitude    string     `json:"longitude"`
	Status       UserStatus `json:"status"`
	RegisteredAt time.Time  `json:"register_at"`
	Weekday      Weekday    `json:"day"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}

// UserSummary is the listing projection; it carries no credential fields.
type UserSummary struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Weekday Weekday `json:"-"`
}
