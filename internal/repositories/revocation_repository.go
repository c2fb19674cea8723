package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
)

// RevocationRepository is the durable registry mapping a device identity
// to revoked/active status. Every check is a fresh read; the registry
// holds no cache, so a revoke takes effect on the next protected request.
type RevocationRepository interface {
	// IsRevoked reports whether the device is currently revoked.
	// A missing row means the device was never revoked.
	IsRevoked(ctx context.Context, deviceID string) (bool, error)

	// Revoke upserts the record with is_revoked = TRUE.
	Revoke(ctx context.Context, deviceID string) error

	// ClearRevocation sets is_revoked = FALSE. Clearing an unknown
	// device is a successful no-op.
	ClearRevocation(ctx context.Context, deviceID string) error
}

type revocationRepository struct {
	db DB
}

func NewRevocationRepository(db DB) RevocationRepository {
	return &revocationRepository{db: db}
}

func (r *revocationRepository) IsRevoked(ctx context.Context, deviceID string) (bool, error) {
	q := `SELECT is_revoked FROM device_revocations WHERE device_id = $1`
	var revoked bool
	err := r.db.QueryRow(ctx, q, deviceID).Scan(&revoked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *revocationRepository) Revoke(ctx context.Context, deviceID string) error {
	q := `
        INSERT INTO device_revocations (device_id, is_revoked)
        VALUES ($1, TRUE)
        ON CONFLICT (device_id) DO UPDATE SET is_revoked = TRUE
    `
	_, err := r.db.Exec(ctx, q, deviceID)
	return err
}

func (r *revocationRepository) ClearRevocation(ctx context.Context, deviceID string) error {
	q := `UPDATE device_revocations SET is_revoked = FALSE WHERE device_id = $1`
	_, err := r.db.Exec(ctx, q, deviceID)
	return err
}
