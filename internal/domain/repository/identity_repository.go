// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrIdentityNotFound is a domain-specific error returned when an identity is not found.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository defines the standard operations for identity persistence.
// The application layer will depend on this interface, not the concrete implementation.
type IdentityRepository interface {
	// FindByID retrieves a single identity by its unique ID, with entitlement state loaded.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByEmail retrieves a single identity by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)

	// FindByUsername retrieves a single identity by its unique username.
	FindByUsername(ctx context.Context, username string) (*entity.Identity, error)

	// Create persists a new identity entity to the storage.
	Create(ctx context.Context, identity *entity.Identity) error

	// Update modifies an existing identity entity in the storage.
	Update(ctx context.Context, identity *entity.Identity) error

	// TouchLastLogin records a successful login without modifying any other
	// field. Widget logins for existing accounts must not alter the role.
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
