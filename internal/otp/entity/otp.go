package entity

import "time"

type Identity struct {
	ID           string
	MobileNumber string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Passcode struct {
	ID             int64
	IdentityID     string
	CodeHash       string
	ExpiresAt      time.Time
	ConsumedAt     *time.Time
	ConsumedReason ConsumedReason
	CreatedAt      time.Time
}

// Consumed reports whether the passcode has already been used or superseded.
func (p Passcode) Consumed() bool {
	return p.ConsumedAt != nil
}

// Expired reports whether the passcode is no longer valid at the given time.
// A passcode expires exactly at its expiry instant.
func (p Passcode) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
