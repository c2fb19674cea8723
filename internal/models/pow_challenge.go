package models

import "time"

// PowChallenge is a server-issued proof-of-work puzzle. Immutable once
// created; the challenge ID is the sole key used for consumption.
type PowChallenge struct {
	ChallengeID   string    `json:"challenge_id"`
	ChallengeData string    `json:"challenge_data"` // URL-safe base64 random data
	Difficulty    uint32    `json:"difficulty"`     // required leading zero bits
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// PowSolution is a client-submitted answer to a PowChallenge. It is
// verified once and never persisted.
type PowSolution struct {
	ChallengeID string `json:"challenge_id"`
	Nonce       uint64 `json:"nonce"`
	Hash        string `json:"hash"` // base64 encoded SHA-256 digest
}
