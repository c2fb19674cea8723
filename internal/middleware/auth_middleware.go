package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

type contextKey string

// ContextKeyClaims holds the *models.DeviceClaims of an authenticated
// request after the auth gate has admitted it.
const ContextKeyClaims = contextKey("deviceClaims")

// TokenValidator is the slice of the JWT service the gate needs.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.DeviceClaims, error)
}

// RevocationChecker is the slice of the revocation registry the gate
// needs. Every call is a fresh read against durable storage.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, deviceID string) (bool, error)
}

// publicPaths are admitted without credentials: the health check, the
// PoW endpoints that bootstrap an identity, and the self-authenticating
// recovery endpoints (a revoked device must still be able to reach
// reissue and request an OTP; those handlers validate the bearer token
// themselves, signature and expiry only).
var publicPaths = []string{
	"/health",
	"/pow/challenge",
	"/pow/verify",
	"/device/reissue",
	"/device/otp/request",
}

// IsPublicPath reports whether path is on the fixed allow-list.
func IsPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// AuthMiddleware is the request gate: it validates the bearer credential
// and checks the revocation registry on every protected call. Any
// ambiguity (registry I/O failure, cancelled context) rejects the
// request; the gate never admits on error.
func AuthMiddleware(tokens TokenValidator, revocations RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, err := ExtractBearerToken(r)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil,
				)
				return
			}

			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil,
				)
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), claims.Subject)
			if err != nil {
				utils.RespondErrorWithCode(
					w, http.StatusInternalServerError, utils.ErrCodeInternal, "Authorization check failed", nil, err,
				)
				return
			}
			if revoked {
				utils.RespondErrorWithCode(
					w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Device revoked", nil,
				)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken reads the credential from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", errors.New("missing Authorization header")
	}
	token := strings.TrimPrefix(h, "Bearer ")
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

// ClaimsFromContext returns the authenticated claims attached by the
// gate, or nil if the request did not pass through it.
func ClaimsFromContext(ctx context.Context) *models.DeviceClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*models.DeviceClaims)
	return claims
}
