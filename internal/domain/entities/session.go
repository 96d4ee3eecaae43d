package entities

import "time"

// Role distinguishes patients from administrators
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Session is an authenticated user session issued after the identity provider
// verified the user. It is passed explicitly to the services that need it.
type Session struct {
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	Phone       string    `json:"phone,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsAdmin reports whether the session carries the admin role
func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
