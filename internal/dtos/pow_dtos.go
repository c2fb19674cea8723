package dtos

import "time"

// PowSolutionDTO mirrors models.PowSolution on the wire.
type PowSolutionDTO struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
	Nonce       uint64 `json:"nonce"`
	Hash        string `json:"hash" validate:"required"`
}

// PowChallengeResponse is returned by POST /pow/challenge. Server-only
// fields (created_at) are never forwarded to the client.
type PowChallengeResponse struct {
	ChallengeID   string    `json:"challenge_id"`
	ChallengeData string    `json:"challenge_data"`
	Difficulty    uint32    `json:"difficulty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// PowVerifyRequest is the body of POST /pow/verify. Role defaults to
// buyer when omitted; seller credentials must carry an E.164 phone number
// so the identity can later be revoked and reissued with an OTP proof.
type PowVerifyRequest struct {
	Solution    PowSolutionDTO `json:"solution" validate:"required"`
	PublicKey   string         `json:"public_key" validate:"required"`
	RelayID     string         `json:"relay_id" validate:"required"`
	Role        string         `json:"role" validate:"omitempty,oneof=buyer seller"`
	PhoneNumber string         `json:"phone_number" validate:"omitempty,e164"`
}

// TokenResponse carries a freshly minted credential.
type TokenResponse struct {
	Token string `json:"token"`
}
