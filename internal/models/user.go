package models

import "time"

// User is an identity record. Accounts are provisioned out of band; this
// application never creates, updates, or deletes them.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	IsAdmin      bool
	CreatedAt    time.Time
}

// ServerSession is the persisted per-browser-session state. CurrentPage is
// the session state machine's page field; everything identity-related is
// re-read from the users table on each request rather than trusted here.
type ServerSession struct {
	ID               string
	UserID           string
	RefreshTokenHash []byte
	CurrentPage      string
	IPAddress        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
