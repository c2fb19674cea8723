package models

import "time"

// Device roles carried inside issued credentials.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
)

// DeviceClaims is the decoded payload of a signed device credential.
// A credential always carries subject + role; seller credentials also
// carry the phone number used for possession proofs. Claims are built
// once at issuance and never stored server side.
type DeviceClaims struct {
	Subject     string    `json:"subject"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsSeller reports whether the credential was issued with the seller role.
func (c *DeviceClaims) IsSeller() bool {
	return c.Role == RoleSeller
}
