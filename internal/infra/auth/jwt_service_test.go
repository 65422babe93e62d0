package auth

import (
	"testing"
	"time"

	"kiosk/config"
	"kiosk/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTConfig(secret string) *config.Config {
	return &config.Config{
		SecretKey: struct {
			Session string `json:"session" yaml:"session"`
		}{
			Session: secret,
		},
	}
}

func TestJWTService_GenerateAndValidateToken(t *testing.T) {
	cfg := newTestJWTConfig("test_session_secret_key_very_long_for_testing")

	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)
	require.NotNil(t, jwtService)

	identity := &entity.Identity{
		ID:   uuid.New(),
		Role: entity.RoleAdmin,
	}

	token, err := jwtService.GenerateToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, identity.ID, claims.IdentityID)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.Admin)
	assert.Equal(t, "session", claims.Type)
}

func TestJWTService_RegularUserClaims(t *testing.T) {
	cfg := newTestJWTConfig("test_session_secret_key_very_long_for_testing")

	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)

	identity := &entity.Identity{
		ID:   uuid.New(),
		Role: entity.RoleUser,
	}

	token, err := jwtService.GenerateToken(identity)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
	assert.False(t, claims.Admin)
}

func TestJWTService_InvalidToken(t *testing.T) {
	cfg := newTestJWTConfig("test_session_secret_key_very_long_for_testing")

	jwtService, err := NewJWTService(cfg)
	require.NoError(t, err)

	// Clearly non-JWT format
	claims, err := jwtService.ValidateToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token structure")
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer, err := NewJWTService(newTestJWTConfig("first_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	verifier, err := NewJWTService(newTestJWTConfig("second_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	token, err := issuer.GenerateToken(&entity.Identity{ID: uuid.New(), Role: entity.RoleUser})
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	secret := "test_session_secret_key_very_long_for_testing"

	jwtService, err := NewJWTService(newTestJWTConfig(secret))
	require.NoError(t, err)

	// Sign an already-expired token with the same secret.
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: "user",
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-48 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
		},
	})
	tokenString, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_EmptySecret(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig(""))
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt session secret must be provided")
}

func TestJWTService_SessionDuration(t *testing.T) {
	jwtService, err := NewJWTService(newTestJWTConfig("test_session_secret_key_very_long_for_testing"))
	require.NoError(t, err)

	assert.Equal(t, time.Hour*24*30, jwtService.SessionDuration())
}
