// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a password account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// LoginInput defines the data required for a password login. Identifier
// matches either the email or the username.
type LoginInput struct {
	Identifier string
	Password   string
}

// TelegramLoginInput carries the raw widget payload. Fields holds every
// key/value pair exactly as the widget sent it, including the hash; the
// verifier decides which fields participate in the signature.
type TelegramLoginInput struct {
	Fields map[string]string
}

// --- Output DTOs ---

// AuthOutput returns the resolved identity and its fresh session token.
type AuthOutput struct {
	Identity *entity.Identity
	Token    string
	IsAdmin  bool
}

// IdentityUsecase defines the interface for identity-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type IdentityUsecase interface {
	// Register creates a password account and issues its first session token.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Login authenticates an email-or-username plus password pair.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// TelegramLogin verifies a login-widget payload and resolves or creates
	// the linked account.
	TelegramLogin(ctx context.Context, input *TelegramLoginInput) (*AuthOutput, error)

	// Authenticate validates a session token and re-reads the current
	// identity from the store. Claims are never the final word on the role.
	Authenticate(ctx context.Context, tokenString string) (*entity.Identity, error)

	// GetIdentity loads an identity by id for administrative lookup.
	GetIdentity(ctx context.Context, id uuid.UUID) (*entity.Identity, error)
}
