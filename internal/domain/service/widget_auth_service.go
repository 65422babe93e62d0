package service

import (
	"time"

	"kiosk/internal/domain/entity"
)

// TelegramUser represents the verified payload of the Telegram login widget.
type TelegramUser struct {
	ID        int64     // Telegram's numeric user id ('id' field).
	FirstName string    // Required by the widget.
	LastName  string    // Optional; empty when absent.
	Username  string    // Optional Telegram handle; empty when absent.
	PhotoURL  string    // Optional avatar URL; empty when absent.
	AuthDate  time.Time // When Telegram signed the payload.
}

// WidgetAuthService defines the interface for login-widget verification.
// Verification covers whatever fields the payload carries, so new widget
// fields don't break the signature.
type WidgetAuthService interface {
	// VerifyAuthData checks the widget signature and freshness over the raw
	// field set (hash excluded) and returns the verified user information.
	VerifyAuthData(fields map[string]string) (*TelegramUser, error)

	// GetProvider returns the provider type this verifier serves.
	GetProvider() entity.Provider
}
