package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/poofware/device-auth-service/internal/models"
)

// DeviceOTPRepository manages single-use possession-proof codes tied to
// a phone number.
type DeviceOTPRepository interface {
	// CreateCode stores a new code with a specific expiry.
	CreateCode(ctx context.Context, phoneNumber, code string, expiresAt time.Time) error

	// GetLatestCode fetches the most recent code for a phone number.
	// Returns nil if none exists.
	GetLatestCode(ctx context.Context, phoneNumber string) (*models.DeviceOTPCode, error)

	// DeleteCode removes a code row (successful verification consumes it).
	DeleteCode(ctx context.Context, id uuid.UUID) error

	IncrementAttempts(ctx context.Context, id uuid.UUID) error

	// CleanupExpired removes all codes past their expiry.
	CleanupExpired(ctx context.Context) error
}

type deviceOTPRepository struct {
	db DB
}

func NewDeviceOTPRepository(db DB) DeviceOTPRepository {
	return &deviceOTPRepository{db: db}
}

func (r *deviceOTPRepository) CreateCode(
	ctx context.Context,
	phoneNumber, code string,
	expiresAt time.Time,
) error {
	q := `
        INSERT INTO device_otp_codes
            (id, phone_number, code, expires_at, created_at, attempts)
        VALUES ($1, $2, $3, $4, NOW(), 0)
    `
	_, err := r.db.Exec(ctx, q, uuid.New(), phoneNumber, code, expiresAt)
	return err
}

func (r *deviceOTPRepository) GetLatestCode(ctx context.Context, phoneNumber string) (*models.DeviceOTPCode, error) {
	q := `
        SELECT id, phone_number, code, expires_at, attempts, created_at
        FROM device_otp_codes
        WHERE phone_number = $1
        ORDER BY created_at DESC
        LIMIT 1
    `
	row := r.db.QueryRow(ctx, q, phoneNumber)
	var rec models.DeviceOTPCode
	err := row.Scan(
		&rec.ID,
		&rec.PhoneNumber,
		&rec.Code,
		&rec.ExpiresAt,
		&rec.Attempts,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *deviceOTPRepository) DeleteCode(ctx context.Context, id uuid.UUID) error {
	q := `DELETE FROM device_otp_codes WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

func (r *deviceOTPRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	q := `UPDATE device_otp_codes SET attempts = attempts + 1 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}

func (r *deviceOTPRepository) CleanupExpired(ctx context.Context) error {
	q := `DELETE FROM device_otp_codes WHERE expires_at < NOW()`
	_, err := r.db.Exec(ctx, q)
	return err
}
