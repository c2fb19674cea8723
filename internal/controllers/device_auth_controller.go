package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/device-auth-service/internal/config"
	"github.com/poofware/device-auth-service/internal/dtos"
	"github.com/poofware/device-auth-service/internal/middleware"
	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/repositories"
	"github.com/poofware/device-auth-service/internal/services"
	"github.com/poofware/device-auth-service/internal/utils"
)

// DeviceAuthController backs the identity lifecycle: OTP delivery,
// revocation, and reissue of revoked identities.
type DeviceAuthController struct {
	jwtService     services.JWTService
	otpService     services.OTPService
	revocationRepo repositories.RevocationRepository
	cfg            *config.Config
}

func NewDeviceAuthController(
	jwt services.JWTService,
	otp services.OTPService,
	revocations repositories.RevocationRepository,
	cfg *config.Config,
) *DeviceAuthController {
	return &DeviceAuthController{
		jwtService:     jwt,
		otpService:     otp,
		revocationRepo: revocations,
		cfg:            cfg,
	}
}

var deviceValidate = validator.New()

// RequestOTP delivers a possession-proof code to the credential's phone
// number. The bearer is validated for signature and expiry only, so a
// revoked device can still obtain a code for recovery.
func (c *DeviceAuthController) RequestOTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.authenticateSignatureOnly(w, r)
	if !ok {
		return
	}

	var req dtos.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := deviceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid phone number", nil, err,
		)
		return
	}

	// When the credential carries a phone number, the code may only be
	// requested for that number.
	if claims.PhoneNumber != "" && claims.PhoneNumber != req.PhoneNumber {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Unknown phone number", nil,
		)
		return
	}

	if err := c.otpService.RequestCode(r.Context(), req.PhoneNumber); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to send code", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Verification code sent"})
}

// RevokeDevice flips the caller's identity to revoked. The auth gate has
// already established a valid, currently-unrevoked credential; this
// handler additionally requires the seller role and a fresh OTP.
func (c *DeviceAuthController) RevokeDevice(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing credentials", nil,
		)
		return
	}

	if !claims.IsSeller() {
		utils.RespondErrorWithCode(
			w, http.StatusForbidden, utils.ErrCodeForbidden, "Seller role required", nil,
		)
		return
	}

	var req dtos.RevokeDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := deviceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request fields", nil, err,
		)
		return
	}

	if !c.verifyPossession(w, r, claims.PhoneNumber, req.PhoneNumber, req.OTP) {
		return
	}

	if err := c.revocationRepo.Revoke(r.Context(), claims.Subject); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to revoke device", nil, err,
		)
		return
	}

	utils.Logger.WithField("device_id", claims.Subject).Info("Device revoked")
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Device revoked"})
}

// ReissueDevice clears the caller's revocation and mints a replacement
// credential. The bearer is deliberately validated for signature and
// expiry only, not current revocation status: this is the recovery path
// for a revoked device that can still prove prior possession of its
// credential plus the out-of-band code.
func (c *DeviceAuthController) ReissueDevice(w http.ResponseWriter, r *http.Request) {
	claims, ok := c.authenticateSignatureOnly(w, r)
	if !ok {
		return
	}

	var req dtos.ReissueDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := deviceValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request fields", nil, err,
		)
		return
	}

	if !c.verifyPossession(w, r, claims.PhoneNumber, req.PhoneNumber, req.OTP) {
		return
	}

	if err := c.revocationRepo.ClearRevocation(r.Context(), claims.Subject); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to clear revocation", nil, err,
		)
		return
	}

	token, err := c.jwtService.GenerateToken(claims.Subject, claims.Role, claims.PhoneNumber, c.cfg.TokenTTL)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue credential", nil, err,
		)
		return
	}

	utils.Logger.WithField("device_id", claims.Subject).Info("Device credential reissued")
	utils.RespondWithJSON(w, http.StatusOK, dtos.TokenResponse{Token: token})
}

// DeviceStatus echoes the authenticated identity (behind the auth gate).
func (c *DeviceAuthController) DeviceStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing credentials", nil,
		)
		return
	}

	resp := dtos.DeviceStatusResponse{
		DeviceID:    claims.Subject,
		Role:        claims.Role,
		PhoneNumber: claims.PhoneNumber,
		ExpiresAt:   claims.ExpiresAt,
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// authenticateSignatureOnly extracts and validates the bearer token
// without consulting the revocation registry.
func (c *DeviceAuthController) authenticateSignatureOnly(w http.ResponseWriter, r *http.Request) (*models.DeviceClaims, bool) {
	tokenStr, err := middleware.ExtractBearerToken(r)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
		)
		return nil, false
	}

	claims, err := c.jwtService.ValidateToken(tokenStr)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil,
		)
		return nil, false
	}
	return claims, true
}

// verifyPossession enforces the phone/OTP possession proof shared by
// revoke and reissue. Writes the error response itself and reports
// success as the bool.
func (c *DeviceAuthController) verifyPossession(
	w http.ResponseWriter,
	r *http.Request,
	claimsPhone, reqPhone, otp string,
) bool {
	// a credential bound to a phone number only accepts proofs for it
	if claimsPhone != "" && claimsPhone != reqPhone {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Unknown phone number", nil,
		)
		return false
	}

	err := c.otpService.VerifyCode(r.Context(), reqPhone, otp)
	switch {
	case err == nil:
		return true
	case errors.Is(err, utils.ErrUnknownPhone):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Unknown phone number", nil,
		)
	case errors.Is(err, utils.ErrInvalidOTP):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid verification code", nil,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Verification failed", nil, err,
		)
	}
	return false
}
