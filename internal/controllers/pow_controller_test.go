package controllers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poofware/device-auth-service/internal/dtos"
	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/services"
	"github.com/poofware/device-auth-service/internal/utils"
)

func requestChallenge(t *testing.T, h *harness) dtos.PowChallengeResponse {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/pow/challenge", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dtos.PowChallengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func solve(t *testing.T, challenge dtos.PowChallengeResponse) dtos.PowSolutionDTO {
	t.Helper()
	for nonce := uint64(0); ; nonce++ {
		hash := services.ComputeHash(challenge.ChallengeData, nonce)
		if services.MeetsDifficulty(hash, challenge.Difficulty) {
			return dtos.PowSolutionDTO{
				ChallengeID: challenge.ChallengeID,
				Nonce:       nonce,
				Hash:        base64.StdEncoding.EncodeToString(hash),
			}
		}
	}
}

func TestGetChallenge_ResponseShape(t *testing.T) {
	h := newHarness(t)
	resp := requestChallenge(t, h)

	require.NotEmpty(t, resp.ChallengeID)
	require.NotEmpty(t, resp.ChallengeData)
	require.Equal(t, uint32(4), resp.Difficulty)
	require.False(t, resp.ExpiresAt.IsZero())
}

func TestVerifySolution_IssuesBuyerTokenByDefault(t *testing.T) {
	h := newHarness(t)
	challenge := requestChallenge(t, h)

	rec := h.do(t, http.MethodPost, "/pow/verify", "", dtos.PowVerifyRequest{
		Solution:  solve(t, challenge),
		PublicKey: "bXktcHVibGljLWtleQ",
		RelayID:   "relay-42",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dtos.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := h.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "relay-42", claims.Subject)
	require.Equal(t, models.RoleBuyer, claims.Role)
	require.Empty(t, claims.PhoneNumber)
}

func TestVerifySolution_SellerCarriesPhone(t *testing.T) {
	h := newHarness(t)
	challenge := requestChallenge(t, h)

	rec := h.do(t, http.MethodPost, "/pow/verify", "", dtos.PowVerifyRequest{
		Solution:    solve(t, challenge),
		PublicKey:   "bXktcHVibGljLWtleQ",
		RelayID:     "dev-7",
		Role:        models.RoleSeller,
		PhoneNumber: "+15551230000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dtos.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := h.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, models.RoleSeller, claims.Role)
	require.Equal(t, "+15551230000", claims.PhoneNumber)
}

func TestVerifySolution_SellerWithoutPhoneRejected(t *testing.T) {
	h := newHarness(t)
	challenge := requestChallenge(t, h)

	rec := h.do(t, http.MethodPost, "/pow/verify", "", dtos.PowVerifyRequest{
		Solution:  solve(t, challenge),
		PublicKey: "bXktcHVibGljLWtleQ",
		RelayID:   "dev-7",
		Role:      models.RoleSeller,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifySolution_ReplayRejected(t *testing.T) {
	h := newHarness(t)
	challenge := requestChallenge(t, h)
	solution := solve(t, challenge)

	req := dtos.PowVerifyRequest{
		Solution:  solution,
		PublicKey: "bXktcHVibGljLWtleQ",
		RelayID:   "relay-42",
	}

	rec := h.do(t, http.MethodPost, "/pow/verify", "", req)
	require.Equal(t, http.StatusOK, rec.Code)

	// replaying the identical solution: the challenge is gone
	rec = h.do(t, http.MethodPost, "/pow/verify", "", req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeChallengeNotFound, errResp.Code)
}

func TestVerifySolution_BadSolutionRejected(t *testing.T) {
	h := newHarness(t)
	challenge := requestChallenge(t, h)
	solution := solve(t, challenge)
	solution.Hash = base64.StdEncoding.EncodeToString(services.ComputeHash("tampered", solution.Nonce))

	rec := h.do(t, http.MethodPost, "/pow/verify", "", dtos.PowVerifyRequest{
		Solution:  solution,
		PublicKey: "bXktcHVibGljLWtleQ",
		RelayID:   "relay-42",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	require.Equal(t, utils.ErrCodeInvalidSolution, errResp.Code)
}

func TestVerifySolution_InvalidPayload(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/pow/verify", "", dtos.PowVerifyRequest{
		// missing solution fields and relay_id
		PublicKey: "bXktcHVibGljLWtleQ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
