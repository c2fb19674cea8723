package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceOTPCode is a single-use possession-proof code delivered to a
// phone number out of band. Consumed (deleted) on successful verification.
type DeviceOTPCode struct {
	ID          uuid.UUID
	PhoneNumber string
	Code        string
	ExpiresAt   time.Time
	Attempts    int
	CreatedAt   time.Time
}

// IsExpired reports whether the code is past its expiry.
func (c *DeviceOTPCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}
