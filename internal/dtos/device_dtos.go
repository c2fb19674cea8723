package dtos

import "time"

// RequestOTPRequest asks for a one-time code to be delivered by SMS.
type RequestOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

// RevokeDeviceRequest is the body of POST /device/revoke.
type RevokeDeviceRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	OTP         string `json:"otp" validate:"required,numeric"`
}

// ReissueDeviceRequest is the body of POST /device/reissue.
type ReissueDeviceRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	OTP         string `json:"otp" validate:"required,numeric"`
}

// MessageResponse is a generic success body.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeviceStatusResponse echoes the authenticated identity back to the
// caller (GET /device/me).
type DeviceStatusResponse struct {
	DeviceID    string    `json:"device_id"`
	Role        string    `json:"role"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}
