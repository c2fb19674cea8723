package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/poofware/device-auth-service/internal/config"
	"github.com/poofware/device-auth-service/internal/dtos"
	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/services"
	"github.com/poofware/device-auth-service/internal/utils"
)

type PowController struct {
	powService *services.PowService
	jwtService services.JWTService
	cfg        *config.Config
}

func NewPowController(pow *services.PowService, jwt services.JWTService, cfg *config.Config) *PowController {
	return &PowController{powService: pow, jwtService: jwt, cfg: cfg}
}

var powValidate = validator.New()

// GetChallenge issues a fresh proof-of-work challenge.
func (c *PowController) GetChallenge(w http.ResponseWriter, r *http.Request) {
	challenge := c.powService.GenerateChallenge()

	utils.Logger.WithField("challenge_id", challenge.ChallengeID).
		Debug("Issued PoW challenge")

	resp := dtos.PowChallengeResponse{
		ChallengeID:   challenge.ChallengeID,
		ChallengeData: challenge.ChallengeData,
		Difficulty:    challenge.Difficulty,
		ExpiresAt:     challenge.ExpiresAt,
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// VerifySolution consumes a solved challenge and mints a credential
// bound to the client-supplied identity and role.
func (c *PowController) VerifySolution(w http.ResponseWriter, r *http.Request) {
	var req dtos.PowVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := powValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid request fields", nil, err,
		)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleBuyer
	}
	if role == models.RoleSeller && req.PhoneNumber == "" {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Seller credentials require a phone number", nil,
		)
		return
	}

	sol := models.PowSolution{
		ChallengeID: req.Solution.ChallengeID,
		Nonce:       req.Solution.Nonce,
		Hash:        req.Solution.Hash,
	}
	if err := c.powService.VerifySolution(sol); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnprocessableEntity, powErrorCode(err), "Proof of work rejected", nil, err,
		)
		return
	}

	token, err := c.jwtService.GenerateToken(req.RelayID, role, req.PhoneNumber, c.cfg.TokenTTL)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to issue credential", nil, err,
		)
		return
	}

	utils.Logger.WithField("relay_id", req.RelayID).Info("PoW verified, credential issued")
	utils.RespondWithJSON(w, http.StatusOK, dtos.TokenResponse{Token: token})
}

// powErrorCode maps PoW domain errors onto their wire codes.
func powErrorCode(err error) string {
	switch {
	case errors.Is(err, utils.ErrChallengeNotFound):
		return utils.ErrCodeChallengeNotFound
	case errors.Is(err, utils.ErrChallengeExpired):
		return utils.ErrCodeChallengeExpired
	case errors.Is(err, utils.ErrDifficultyNotMet):
		return utils.ErrCodeDifficultyNotMet
	default:
		return utils.ErrCodeInvalidSolution
	}
}
