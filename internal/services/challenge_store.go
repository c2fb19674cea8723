package services

import (
	"sync"
	"time"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

// ChallengeStore owns the process-wide map of outstanding proof-of-work
// challenges. It is explicitly constructed and injected (never a hidden
// singleton) so tests and multiple instances stay independent.
//
// All mutation happens under a single mutex whose critical sections do
// only in-memory work; Consume runs the caller's verification inside the
// lock so that check-and-remove is indivisible: two concurrent calls for
// the same challenge ID can never both succeed.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]models.PowChallenge
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]models.PowChallenge),
	}
}

// Insert registers a freshly generated challenge.
func (s *ChallengeStore) Insert(c models.PowChallenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.ChallengeID] = c
}

// Consume looks up the challenge, enforces expiry, runs verify, and
// deletes the entry when verify succeeds. Expired entries are removed
// on sight. The verify callback must not perform I/O.
func (s *ChallengeStore) Consume(id string, verify func(models.PowChallenge) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok {
		return utils.ErrChallengeNotFound
	}

	if time.Now().After(c.ExpiresAt) {
		delete(s.challenges, id)
		return utils.ErrChallengeExpired
	}

	if err := verify(c); err != nil {
		return err
	}

	// single-use: a verified challenge is gone
	delete(s.challenges, id)
	return nil
}

// SweepExpired removes every challenge past its expiry and returns how
// many were dropped. Scheduled periodically to bound memory growth.
func (s *ChallengeStore) SweepExpired() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of outstanding challenges.
func (s *ChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
