package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/poofware/device-auth-service/internal/models"
	"github.com/poofware/device-auth-service/internal/utils"
)

// TokenIssuer identifies the service that issues all device credentials.
const TokenIssuer = "Poof"

// ---------------------------------------------------------------------
// JWTService interface
// ---------------------------------------------------------------------

// JWTService signs and verifies device credentials. It is stateless: a
// pure function of the signing secret and the payload, safe for
// unsynchronized concurrent use.
type JWTService interface {
	// GenerateToken mints a credential for subject with the given role.
	// phoneNumber may be empty; when present (seller credentials) it is
	// embedded so possession proofs can be matched later.
	GenerateToken(subject, role, phoneNumber string, ttl time.Duration) (string, error)

	// ValidateToken verifies the signature over the exact bytes received
	// and the required claims. Every failure mode collapses into
	// utils.ErrInvalidToken: callers must not be able to distinguish a
	// bad signature from an expired credential.
	ValidateToken(tokenString string) (*models.DeviceClaims, error)
}

// ---------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------

type jwtService struct {
	secret []byte
}

func NewJWTService(secret []byte) JWTService {
	return &jwtService{secret: secret}
}

func (j *jwtService) GenerateToken(subject, role, phoneNumber string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("empty subject")
	}
	if role != models.RoleBuyer && role != models.RoleSeller {
		return "", errors.New("unknown role: " + role)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  TokenIssuer,
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"jti":  uuid.NewString(),
	}
	if phoneNumber != "" {
		claims["phone_number"] = phoneNumber
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *jwtService) ValidateToken(tokenString string) (*models.DeviceClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		utils.Logger.WithError(err).Debug("token parse failed")
		return nil, utils.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, utils.ErrInvalidToken
	}

	iss, ok := claims["iss"].(string)
	if !ok || iss != TokenIssuer {
		utils.Logger.Debug("token issuer mismatch")
		return nil, utils.ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, utils.ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok || (role != models.RoleBuyer && role != models.RoleSeller) {
		return nil, utils.ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, utils.ErrInvalidToken
	}
	expiresAt := time.Unix(int64(exp), 0)
	if time.Now().After(expiresAt) {
		utils.Logger.Debug("token expired")
		return nil, utils.ErrInvalidToken
	}

	result := &models.DeviceClaims{
		Subject:   sub,
		Role:      role,
		ExpiresAt: expiresAt,
	}
	if iat, ok := claims["iat"].(float64); ok {
		result.IssuedAt = time.Unix(int64(iat), 0)
	}
	if phone, ok := claims["phone_number"].(string); ok {
		result.PhoneNumber = phone
	}
	return result, nil
}
