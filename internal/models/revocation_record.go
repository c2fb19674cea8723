package models

// RevocationRecord marks a device identity as revoked or active.
// Rows are created lazily on first revoke; a missing row is equivalent
// to IsRevoked == false.
type RevocationRecord struct {
	DeviceID  string `json:"device_id"`
	IsRevoked bool   `json:"is_revoked"`
}
