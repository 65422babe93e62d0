package repository

import (
	"context"
	"errors"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCredentialNotFound is a domain-specific error returned when a credential is not found.
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepository defines the standard operations for credential persistence.
// Credentials are keyed by (provider, provider user id); one identity may own
// several of them.
type CredentialRepository interface {
	// FindByProvider retrieves a credential by provider and the account's id at that provider.
	FindByProvider(ctx context.Context, provider entity.Provider, providerUserID string) (*entity.Credential, error)

	// ListByIdentity retrieves every credential linked to the given identity.
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.Credential, error)

	// Create persists a new credential entity to the storage.
	Create(ctx context.Context, credential *entity.Credential) error
}
