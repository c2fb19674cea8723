package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	// Proof-of-work challenge lifecycle.
	ErrChallengeNotFound = errors.New("challenge_not_found")
	ErrChallengeExpired  = errors.New("challenge_expired")
	ErrInvalidSolution   = errors.New("invalid_solution")
	ErrDifficultyNotMet  = errors.New("difficulty_not_met")

	// Credential validation. Signature and expiry failures are deliberately
	// collapsed into this single error so callers cannot probe which check
	// rejected an almost-valid token.
	ErrInvalidToken = errors.New("invalid_token")

	// Possession-proof (OTP) verification.
	ErrUnknownPhone = errors.New("unknown_phone")
	ErrInvalidOTP   = errors.New("invalid_otp")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
