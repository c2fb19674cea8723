package services

import (
	"context"
	"fmt"
	"time"

	"github.com/poofware/device-auth-service/internal/repositories"
	"github.com/poofware/device-auth-service/internal/utils"
)

// ---------------------------------------------------------------------
// OTPService interface
// ---------------------------------------------------------------------

// OTPService issues and verifies the out-of-band possession proofs
// (one-time SMS codes) required by the revoke and reissue operations.
type OTPService interface {
	// RequestCode generates a single-use code for phoneNumber, stores
	// it, and delivers it via the configured sender.
	RequestCode(ctx context.Context, phoneNumber string) error

	// VerifyCode checks the submitted code. A phone with no outstanding
	// code yields utils.ErrUnknownPhone; an expired or mismatched code
	// yields utils.ErrInvalidOTP. A verified code is consumed.
	VerifyCode(ctx context.Context, phoneNumber, code string) error
}

// SMSSender delivers a one-time code out of band. Production wires the
// Twilio client; dev profiles log the code instead.
type SMSSender interface {
	Send(ctx context.Context, toPhone, body string) error
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type otpService struct {
	otpRepo    repositories.DeviceOTPRepository
	sender     SMSSender
	codeLength int
	codeExpiry time.Duration
}

func NewOTPService(
	otpRepo repositories.DeviceOTPRepository,
	sender SMSSender,
	codeLength int,
	codeExpiry time.Duration,
) OTPService {
	return &otpService{
		otpRepo:    otpRepo,
		sender:     sender,
		codeLength: codeLength,
		codeExpiry: codeExpiry,
	}
}

func (s *otpService) RequestCode(ctx context.Context, phoneNumber string) error {
	code := utils.RandomNumericString(s.codeLength)
	expiresAt := time.Now().Add(s.codeExpiry)

	if err := s.otpRepo.CreateCode(ctx, phoneNumber, code, expiresAt); err != nil {
		utils.Logger.WithError(err).Error("failed to store OTP code")
		return err
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.codeExpiry.Minutes()))
	if err := s.sender.Send(ctx, phoneNumber, body); err != nil {
		utils.Logger.WithError(err).Error("failed to deliver OTP code")
		return err
	}
	return nil
}

func (s *otpService) VerifyCode(ctx context.Context, phoneNumber, code string) error {
	rec, err := s.otpRepo.GetLatestCode(ctx, phoneNumber)
	if err != nil {
		utils.Logger.WithError(err).Error("failed to fetch OTP code")
		return err
	}
	if rec == nil {
		return utils.ErrUnknownPhone
	}

	if rec.IsExpired() {
		return utils.ErrInvalidOTP
	}

	if rec.Code != code {
		if err := s.otpRepo.IncrementAttempts(ctx, rec.ID); err != nil {
			utils.Logger.WithError(err).Warn("failed to increment OTP attempts")
		}
		return utils.ErrInvalidOTP
	}

	// single-use: consume on success
	if err := s.otpRepo.DeleteCode(ctx, rec.ID); err != nil {
		utils.Logger.WithError(err).Error("failed to consume OTP code")
		return err
	}
	return nil
}
