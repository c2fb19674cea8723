package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

// fakeOTPRepo is an in-memory DeviceOTPRepository.
type fakeOTPRepo struct {
	codes map[string]*models.DeviceOTPCode // keyed by phone number
	err   error
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{codes: make(map[string]*models.DeviceOTPCode)}
}

func (f *fakeOTPRepo) CreateCode(_ context.Context, phone, code string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.codes[phone] = &models.DeviceOTPCode{
		ID:          uuid.New(),
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (f *fakeOTPRepo) GetLatestCode(_ context.Context, phone string) (*models.DeviceOTPCode, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.codes[phone], nil
}

func (f *fakeOTPRepo) DeleteCode(_ context.Context, id uuid.UUID) error {
	for phone, rec := range f.codes {
		if rec.ID == id {
			delete(f.codes, phone)
		}
	}
	return nil
}

func (f *fakeOTPRepo) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	for _, rec := range f.codes {
		if rec.ID == id {
			rec.Attempts++
		}
	}
	return nil
}

func (f *fakeOTPRepo) CleanupExpired(_ context.Context) error {
	now := time.Now()
	for phone, rec := range f.codes {
		if now.After(rec.ExpiresAt) {
			delete(f.codes, phone)
		}
	}
	return nil
}

// captureSender records outgoing messages.
type captureSender struct {
	to   []string
	body []string
}

func (c *captureSender) Send(_ context.Context, toPhone, body string) error {
	c.to = append(c.to, toPhone)
	c.body = append(c.body, body)
	return nil
}

const testPhone = "+15551230000"

func TestOTPService_RequestAndVerify(t *testing.T) {
	t.Parallel()

	repo := newFakeOTPRepo()
	sender := &captureSender{}
	svc := NewOTPService(repo, sender, 6, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, testPhone))
	require.Len(t, sender.to, 1)
	require.Equal(t, testPhone, sender.to[0])

	stored := repo.codes[testPhone]
	require.NotNil(t, stored)
	require.Len(t, stored.Code, 6)
	require.Contains(t, sender.body[0], stored.Code)

	require.NoError(t, svc.VerifyCode(ctx, testPhone, stored.Code))

	// consumed: a second verification finds no outstanding code
	err := svc.VerifyCode(ctx, testPhone, stored.Code)
	require.ErrorIs(t, err, utils.ErrUnknownPhone)
}

func TestOTPService_UnknownPhone(t *testing.T) {
	t.Parallel()

	svc := NewOTPService(newFakeOTPRepo(), &captureSender{}, 6, 5*time.Minute)
	err := svc.VerifyCode(context.Background(), "+15559990000", "123456")
	require.ErrorIs(t, err, utils.ErrUnknownPhone)
}

func TestOTPService_WrongCode(t *testing.T) {
	t.Parallel()

	repo := newFakeOTPRepo()
	svc := NewOTPService(repo, &captureSender{}, 6, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, testPhone))
	stored := repo.codes[testPhone]

	err := svc.VerifyCode(ctx, testPhone, "000000")
	require.ErrorIs(t, err, utils.ErrInvalidOTP)
	require.Equal(t, 1, stored.Attempts)

	// the right code still works after a failed attempt
	require.NoError(t, svc.VerifyCode(ctx, testPhone, stored.Code))
}

func TestOTPService_ExpiredCode(t *testing.T) {
	t.Parallel()

	repo := newFakeOTPRepo()
	svc := NewOTPService(repo, &captureSender{}, 6, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.CreateCode(ctx, testPhone, "123456", time.Now().Add(-time.Minute)))

	err := svc.VerifyCode(ctx, testPhone, "123456")
	require.ErrorIs(t, err, utils.ErrInvalidOTP)
}

func TestOTPService_RepoFailurePropagates(t *testing.T) {
	t.Parallel()

	repo := newFakeOTPRepo()
	repo.err = errors.New("connection refused")
	svc := NewOTPService(repo, &captureSender{}, 6, 5*time.Minute)

	err := svc.VerifyCode(context.Background(), testPhone, "123456")
	require.Error(t, err)
	require.NotErrorIs(t, err, utils.ErrUnknownPhone)
	require.NotErrorIs(t, err, utils.ErrInvalidOTP)
}
