package domain

import "time"

type RefreshToken struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time

	// RawToken is only populated on issue; it is never stored.
	RawToken string
}
