package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"kiosk/config"
	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBotToken = "1234567890:TEST_TOKEN_abcdefghijklmnop"

// signFields reproduces the signature Telegram's servers compute.
func signFields(botToken string, fields map[string]string) string {
	key := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, key[:])
	mac.Write([]byte(buildCheckString(fields)))

	return hex.EncodeToString(mac.Sum(nil))
}

func newTestService(t *testing.T, now time.Time) *AuthService {
	t.Helper()

	key := sha256.Sum256([]byte(testBotToken))

	return &AuthService{
		secretKey: key[:],
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       func() time.Time { return now },
	}
}

func basePayload(authDate int64) map[string]string {
	return map[string]string{
		"id":         "42",
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"username":   "ada",
		"photo_url":  "https://t.me/i/userpic/ada.jpg",
		"auth_date":  strconv.FormatInt(authDate, 10),
	}
}

func TestBuildCheckString_SortedAndJoined(t *testing.T) {
	fields := map[string]string{
		"username":   "ada",
		"id":         "42",
		"auth_date":  "1700000000",
		"first_name": "Ada",
		"hash":       "must-be-excluded",
	}

	want := "auth_date=1700000000\nfirst_name=Ada\nid=42\nusername=ada"
	assert.Equal(t, want, buildCheckString(fields))
}

func TestVerifyAuthData_ValidPayload(t *testing.T) {
	now := time.Unix(1700000060, 0)
	svc := newTestService(t, now)

	fields := basePayload(1700000000)
	fields["hash"] = signFields(testBotToken, fields)

	user, err := svc.VerifyAuthData(fields)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "https://t.me/i/userpic/ada.jpg", user.PhotoURL)
	assert.Equal(t, time.Unix(1700000000, 0), user.AuthDate)

	// The signature is deterministic; the same payload verifies again.
	_, err = svc.VerifyAuthData(fields)
	assert.NoError(t, err)
}

func TestVerifyAuthData_TamperedFieldInvalidatesSignature(t *testing.T) {
	now := time.Unix(1700000060, 0)

	tampered := map[string]string{
		"id":         "43",
		"first_name": "Eve",
		"last_name":  "Intruder",
		"username":   "eve",
		"photo_url":  "https://t.me/i/userpic/eve.jpg",
		"auth_date":  "1700000059",
	}

	for field, value := range tampered {
		t.Run(field, func(t *testing.T) {
			svc := newTestService(t, now)

			fields := basePayload(1700000000)
			fields["hash"] = signFields(testBotToken, fields)
			fields[field] = value

			user, err := svc.VerifyAuthData(fields)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
		})
	}
}

func TestVerifyAuthData_ExtraSignedFieldStillVerifies(t *testing.T) {
	now := time.Unix(1700000060, 0)
	svc := newTestService(t, now)

	// A field this code has never heard of, signed by the provider.
	fields := basePayload(1700000000)
	fields["premium"] = "true"
	fields["hash"] = signFields(testBotToken, fields)

	user, err := svc.VerifyAuthData(fields)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
}

func TestVerifyAuthData_OptionalFieldsAbsent(t *testing.T) {
	now := time.Unix(1700000060, 0)
	svc := newTestService(t, now)

	fields := map[string]string{
		"id":         "42",
		"first_name": "Ada",
		"auth_date":  "1700000000",
	}
	fields["hash"] = signFields(testBotToken, fields)

	user, err := svc.VerifyAuthData(fields)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Empty(t, user.LastName)
	assert.Empty(t, user.Username)
	assert.Empty(t, user.PhotoURL)
}

func TestVerifyAuthData_MissingHash(t *testing.T) {
	svc := newTestService(t, time.Unix(1700000060, 0))

	user, err := svc.VerifyAuthData(basePayload(1700000000))
	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
}

func TestVerifyAuthData_WrongBotToken(t *testing.T) {
	svc := newTestService(t, time.Unix(1700000060, 0))

	fields := basePayload(1700000000)
	fields["hash"] = signFields("1234567890:OTHER_TOKEN_qrstuvwxyz", fields)

	user, err := svc.VerifyAuthData(fields)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
}

func TestVerifyAuthData_FreshnessBoundary(t *testing.T) {
	const authDate = int64(1700000000)

	t.Run("exactly 300 seconds old is accepted", func(t *testing.T) {
		svc := newTestService(t, time.Unix(authDate+300, 0))

		fields := basePayload(authDate)
		fields["hash"] = signFields(testBotToken, fields)

		_, err := svc.VerifyAuthData(fields)
		assert.NoError(t, err)
	})

	t.Run("301 seconds old is rejected", func(t *testing.T) {
		svc := newTestService(t, time.Unix(authDate+301, 0))

		fields := basePayload(authDate)
		fields["hash"] = signFields(testBotToken, fields)

		user, err := svc.VerifyAuthData(fields)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, domainerrors.ErrAuthDataExpired)
	})
}

func TestVerifyAuthData_MalformedAuthDate(t *testing.T) {
	svc := newTestService(t, time.Unix(1700000060, 0))

	fields := basePayload(1700000000)
	fields["auth_date"] = "not-a-timestamp"
	fields["hash"] = signFields(testBotToken, fields)

	user, err := svc.VerifyAuthData(fields)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
}

func TestNewAuthService_RequiresBotToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := NewAuthService(&config.Config{}, logger)
	assert.Error(t, err)
	assert.Nil(t, svc)

	svc, err = NewAuthService(&config.Config{
		Telegram: &config.TelegramConfig{BotToken: testBotToken},
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, entity.ProviderTelegram, svc.GetProvider())
}
