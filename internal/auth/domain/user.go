package domain

import (
	"strings"
	"time"
)

// DefaultAppHeader is the profile header a new account starts with.
const DefaultAppHeader = "Изменить название"

const (
	MaxUsernameLength  = 100
	MaxAppHeaderLength = 1000
)

type User struct {
	ID           string
	Email        string // unique, stored normalized
	Username     string
	PasswordHash string // argon2 encoded
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the per-user garden settings shown in the app header.
type Profile struct {
	UserID    string
	AppHeader string
	Image     string // path relative to the media root, empty when unset
	UpdatedAt time.Time
}

// NormalizeEmail lowercases the domain part and trims whitespace, so logins
// match regardless of how the address was typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
