// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"kiosk/config"
	"kiosk/internal/domain/entity"
	"kiosk/internal/domain/service"
	"kiosk/internal/errors"
)

// sessionTTL is the fixed lifetime of a session token. Tokens are stateless;
// there is no refresh or revocation flow.
const sessionTTL = time.Hour * 24 * 30

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	sessionSecret string        // Secret key for signing session tokens.
	ttl           time.Duration // Time-to-live for session tokens.
}

// NewJWTService is the constructor for jwtService.
// A missing signing secret aborts startup; it is never a runtime fallback.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Session == "" {
		return nil, errors.New("jwt session secret must be provided")
	}

	return &jwtService{
		sessionSecret: cfg.SecretKey.Session,
		ttl:           sessionTTL,
	}, nil
}

// sessionClaims is the wire form of the session token payload.
type sessionClaims struct {
	Role  string `json:"role"`
	Admin bool   `json:"admin"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new signed session token for the given identity.
// The role and admin flag are snapshots; authorization re-reads the store.
func (s *jwtService) GenerateToken(identity *entity.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role:  identity.Role.String(),
		Admin: identity.Role.IsAdmin(),
		Type:  "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.sessionSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// ValidateToken checks the validity of a token string and returns its claims.
// Bad signatures, expired tokens and malformed input all fail here.
func (s *jwtService) ValidateToken(tokenString string) (*service.Claims, error) {
	parsed := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(s.sessionSecret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token structure")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	identityID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "token subject is not a valid identity id")
	}

	return &service.Claims{
		IdentityID:       identityID,
		Role:             parsed.Role,
		Admin:            parsed.Admin,
		Type:             parsed.Type,
		RegisteredClaims: parsed.RegisteredClaims,
	}, nil
}

// SessionDuration returns the fixed lifetime of issued session tokens.
func (s *jwtService) SessionDuration() time.Duration {
	return s.ttl
}
