package entity

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies the authentication method a credential belongs to.
type Provider string

const (
	// ProviderPassword is the email/username + password credential.
	ProviderPassword Provider = "password"
	// ProviderTelegram is the Telegram login widget credential.
	ProviderTelegram Provider = "telegram"
)

// String returns the string representation of the Provider.
func (p Provider) String() string {
	return string(p)
}

// Credential represents a single method of logging in. A password account owns
// one "password" record, while a Telegram-linked account owns a "telegram"
// record keyed by the numeric Telegram user id.
type Credential struct {
	ID             uuid.UUID // The unique ID for this specific credential record itself.
	IdentityID     uuid.UUID // Links this credential to the Identity it belongs to.
	Provider       Provider  // The authentication provider this credential came from.
	ProviderUserID string    // The account's unique ID at the provider (email, or Telegram user id in decimal form).
	PasswordHash   string    // Stores the bcrypt-hashed password; only set when Provider is "password".
	CreatedAt      time.Time // Timestamp of when this credential was linked to the account.
}
