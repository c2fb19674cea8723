package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"math/bits"
	"time"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

const (
	challengeIDBytes   = 16
	challengeDataBytes = 32
)

// PowService issues and verifies proof-of-work challenges. The
// server-chosen random challenge data prevents precomputed solutions;
// binding the hash to challenge_data ‖ nonce makes the cost provable
// only after the challenge was issued.
type PowService struct {
	store        *ChallengeStore
	difficulty   uint32
	challengeTTL time.Duration
}

func NewPowService(store *ChallengeStore, difficulty uint32, challengeTTL time.Duration) *PowService {
	return &PowService{
		store:        store,
		difficulty:   difficulty,
		challengeTTL: challengeTTL,
	}
}

// GenerateChallenge creates a new single-use challenge and registers it
// in the store. The returned record is safe to forward to the client.
func (s *PowService) GenerateChallenge() models.PowChallenge {
	now := time.Now()
	challenge := models.PowChallenge{
		ChallengeID:   utils.RandomURLSafeString(challengeIDBytes),
		ChallengeData: utils.RandomURLSafeString(challengeDataBytes),
		Difficulty:    s.difficulty,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.challengeTTL),
	}
	s.store.Insert(challenge)
	return challenge
}

// VerifySolution checks a client-submitted solution against its
// outstanding challenge. The whole check runs inside the store's
// critical section so a challenge verifies successfully at most once.
//
// The server recomputes the digest from the challenge data and nonce
// rather than trusting the client's hash; the submitted hash must match
// byte for byte before the difficulty is even considered.
func (s *PowService) VerifySolution(sol models.PowSolution) error {
	return s.store.Consume(sol.ChallengeID, func(c models.PowChallenge) error {
		submitted, err := base64.StdEncoding.DecodeString(sol.Hash)
		if err != nil {
			return utils.ErrInvalidSolution
		}

		expected := ComputeHash(c.ChallengeData, sol.Nonce)
		if !bytes.Equal(expected, submitted) {
			return utils.ErrInvalidSolution
		}

		if !MeetsDifficulty(expected, c.Difficulty) {
			return utils.ErrDifficultyNotMet
		}
		return nil
	})
}

// ComputeHash returns SHA-256(challengeData ‖ little-endian(nonce)).
func ComputeHash(challengeData string, nonce uint64) []byte {
	h := sha256.New()
	h.Write([]byte(challengeData))
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], nonce)
	h.Write(nonceBytes[:])
	return h.Sum(nil)
}

// MeetsDifficulty reports whether hash has at least `difficulty` leading
// zero bits. Monotonic: a hash meeting d+1 also meets d.
func MeetsDifficulty(hash []byte, difficulty uint32) bool {
	return leadingZeroBits(hash) >= int(difficulty)
}

func leadingZeroBits(b []byte) int {
	total := 0
	for _, by := range b {
		if by == 0 {
			total += 8
			continue
		}
		total += bits.LeadingZeros8(by)
		break
	}
	return total
}
