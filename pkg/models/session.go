package models

import "time"

// Role is the access level chosen at login.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
)

// Session is the authenticated user state handed to the CLI at startup.
type Session struct {
	Email      string    `yaml:"email" json:"email"`
	Role       Role      `yaml:"role" json:"role"`
	LoggedInAt time.Time `yaml:"logged_in_at" json:"logged_in_at"`
}
