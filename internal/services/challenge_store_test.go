package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

func storeChallenge(id string, expiresAt time.Time) models.PowChallenge {
	return models.PowChallenge{
		ChallengeID:   id,
		ChallengeData: "data-" + id,
		Difficulty:    4,
		CreatedAt:     time.Now(),
		ExpiresAt:     expiresAt,
	}
}

func TestChallengeStore_ConsumeRemovesOnSuccess(t *testing.T) {
	t.Parallel()

	s := NewChallengeStore()
	s.Insert(storeChallenge("a", time.Now().Add(time.Hour)))

	called := 0
	err := s.Consume("a", func(c models.PowChallenge) error {
		called++
		require.Equal(t, "data-a", c.ChallengeData)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, called)
	require.Equal(t, 0, s.Len())
}

func TestChallengeStore_ConsumeKeepsOnVerifyError(t *testing.T) {
	t.Parallel()

	s := NewChallengeStore()
	s.Insert(storeChallenge("a", time.Now().Add(time.Hour)))

	err := s.Consume("a", func(models.PowChallenge) error {
		return utils.ErrInvalidSolution
	})
	require.ErrorIs(t, err, utils.ErrInvalidSolution)
	require.Equal(t, 1, s.Len())
}

func TestChallengeStore_ConsumeMissing(t *testing.T) {
	t.Parallel()

	s := NewChallengeStore()
	err := s.Consume("missing", func(models.PowChallenge) error {
		t.Fatal("verify must not run for a missing challenge")
		return nil
	})
	require.ErrorIs(t, err, utils.ErrChallengeNotFound)
}

func TestChallengeStore_SweepExpired(t *testing.T) {
	t.Parallel()

	s := NewChallengeStore()
	s.Insert(storeChallenge("live", time.Now().Add(time.Hour)))
	s.Insert(storeChallenge("dead-1", time.Now().Add(-time.Minute)))
	s.Insert(storeChallenge("dead-2", time.Now().Add(-time.Hour)))

	removed := s.SweepExpired()
	require.Equal(t, 2, removed)
	require.Equal(t, 1, s.Len())

	// the surviving entry is still consumable
	err := s.Consume("live", func(models.PowChallenge) error { return nil })
	require.NoError(t, err)
}
