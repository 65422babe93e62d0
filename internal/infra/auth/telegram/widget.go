// Package telegram implements verification for the Telegram login widget.
// The widget signs whatever fields it sends with HMAC-SHA256 keyed by the
// SHA-256 digest of the bot token.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"kiosk/config"
	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/service"
	"kiosk/internal/errors"
)

// maxAuthAge is how old a signed payload may be before it is rejected.
// A payload exactly this old is still accepted. Payloads younger than the
// cutoff can be replayed; the token exchange happens immediately after the
// widget redirect, so the window is accepted as-is.
const maxAuthAge = 300 * time.Second

// hashField carries the signature and is excluded from the check string.
const hashField = "hash"

// AuthService is a concrete implementation of the WidgetAuthService interface
// for Telegram login payloads.
type AuthService struct {
	secretKey []byte // SHA-256 digest of the bot token.
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService is the constructor for AuthService. The bot token is
// required; without it no payload could ever verify.
func NewAuthService(cfg *config.Config, logger *slog.Logger) (service.WidgetAuthService, error) {
	if cfg.Telegram == nil || cfg.Telegram.BotToken == "" {
		return nil, errors.New("telegram bot token must be provided")
	}

	key := sha256.Sum256([]byte(cfg.Telegram.BotToken))

	return &AuthService{
		secretKey: key[:],
		logger:    logger,
		now:       time.Now,
	}, nil
}

// VerifyAuthData checks the widget signature and freshness over the raw
// field set and returns the verified user information. All structural
// failures report the same signature error so callers can't probe which
// part was wrong; only staleness is reported distinctly.
func (s *AuthService) VerifyAuthData(fields map[string]string) (*service.TelegramUser, error) {
	providedHash, ok := fields[hashField]
	if !ok || providedHash == "" {
		return nil, domainerrors.ErrInvalidSignature
	}

	checkString := buildCheckString(fields)

	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(providedHash)) {
		return nil, domainerrors.ErrInvalidSignature
	}

	authDate, err := strconv.ParseInt(fields["auth_date"], 10, 64)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignature
	}

	signedAt := time.Unix(authDate, 0)
	if s.now().Sub(signedAt) > maxAuthAge {
		return nil, domainerrors.ErrAuthDataExpired
	}

	telegramID, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignature
	}

	user := &service.TelegramUser{
		ID:        telegramID,
		FirstName: fields["first_name"],
		LastName:  fields["last_name"],
		Username:  fields["username"],
		PhotoURL:  fields["photo_url"],
		AuthDate:  signedAt,
	}

	s.logger.Debug("telegram login payload verified",
		slog.Int64("telegram_id", telegramID),
		slog.String("username", user.Username))

	return user, nil
}

// GetProvider returns the provider type this verifier serves.
func (s *AuthService) GetProvider() entity.Provider {
	return entity.ProviderTelegram
}

// buildCheckString renders every present field except the hash as "key=value"
// lines, sorted lexicographically by key and joined with newlines. It runs
// over whatever fields the payload carries, so new widget fields keep
// verifying without code changes.
func buildCheckString(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		if key == hashField {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}

	return strings.Join(pairs, "\n")
}
