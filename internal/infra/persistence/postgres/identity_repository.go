// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"
	"time"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// identityRepository implements the domain.IdentityRepository interface using GORM.
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository is the constructor for identityRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

// FindByID retrieves a single identity by its unique ID, preloading its entitlement state.
func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Preload("Entitlement").
		First(&identityM, "id = ?", id).Error
	if err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, wrapQueryError(err, "failed to find identity by id")
	}

	// Map the persistence model back to a pure domain entity before returning.
	return toIdentityDomain(&identityM), nil
}

// FindByEmail retrieves a single identity by its email address, preloading its entitlement state.
func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Preload("Entitlement").
		First(&identityM, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, wrapQueryError(err, "failed to find identity by email")
	}

	return toIdentityDomain(&identityM), nil
}

// FindByUsername retrieves a single identity by its unique username, preloading its entitlement state.
func (repo *identityRepository) FindByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Preload("Entitlement").
		First(&identityM, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, wrapQueryError(err, "failed to find identity by username")
	}

	return toIdentityDomain(&identityM), nil
}

// Create persists a new identity entity to the database. When the entity
// carries entitlement state, GORM's Create with associations inserts into
// identities and entitlements within the same statement batch.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	// Map the pure domain entity to a GORM persistence model.
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return identityUniqueViolation(err)
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required account information")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid foreign key reference")
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to create identity")
	}

	// Update the identity entity with the generated ID and timestamps
	identity.ID = identityM.ID
	identity.CreatedAt = identityM.CreatedAt
	identity.UpdatedAt = identityM.UpdatedAt

	// Update the entitlement state if it was created alongside
	if identity.Entitlement != nil && identityM.Entitlement != nil {
		identity.Entitlement.IdentityID = identityM.Entitlement.IdentityID
		identity.Entitlement.UsageResetAt = identityM.Entitlement.UsageResetAt
		identity.Entitlement.CreatedAt = identityM.Entitlement.CreatedAt
		identity.Entitlement.UpdatedAt = identityM.Entitlement.UpdatedAt
	}

	return nil
}

// Update modifies an existing identity's account columns. Entitlement state is
// owned by the entitlement repository and is never written from here.
func (repo *identityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	identityM := fromIdentityDomain(identity)
	identityM.Entitlement = nil

	if err := repo.db.WithContext(ctx).Save(identityM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return identityUniqueViolation(err)
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required account information")
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to update identity")
	}

	identity.UpdatedAt = identityM.UpdatedAt

	return nil
}

// TouchLastLogin stamps the most recent successful login. It deliberately
// writes the one column and nothing else, so widget logins for existing
// accounts can never alter the role.
func (repo *identityRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at)

	if result.Error != nil {
		return wrapQueryError(result.Error, "failed to record login time")
	}

	// If no rows were affected, the identity does not exist.
	if result.RowsAffected == 0 {
		return repository.ErrIdentityNotFound
	}

	return nil
}

// identityUniqueViolation maps a unique constraint violation to the column
// that collided. The constraint name in the PostgreSQL message is the only
// signal left at this point.
func identityUniqueViolation(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "email") {
		return domainerrors.ErrEmailAlreadyExists
	}
	if strings.Contains(msg, "username") {
		return domainerrors.ErrUsernameAlreadyExists
	}

	return domainerrors.ErrConflict.WrapMessage("identity already exists")
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toIdentityDomain converts a GORM IdentityModel to a domain Identity entity.
func toIdentityDomain(data *model.IdentityModel) *entity.Identity {
	if data == nil {
		return nil
	}

	var email string
	if data.Email != nil {
		email = *data.Email
	}

	return &entity.Identity{
		ID:          data.ID,
		Email:       email,
		Username:    data.Username,
		DisplayName: data.DisplayName,
		PhotoURL:    data.PhotoURL,
		Role:        entity.RoleFromString(data.Role),
		Entitlement: toEntitlementDomain(data.Entitlement),
		LastLoginAt: data.LastLoginAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromIdentityDomain converts a domain Identity entity to a GORM IdentityModel for persistence.
func fromIdentityDomain(data *entity.Identity) *model.IdentityModel {
	if data == nil {
		return nil
	}

	// An empty email is stored as NULL so the unique index ignores it.
	var email *string
	if data.Email != "" {
		value := data.Email
		email = &value
	}

	return &model.IdentityModel{
		ID:          data.ID,
		Email:       email,
		Username:    data.Username,
		DisplayName: data.DisplayName,
		PhotoURL:    data.PhotoURL,
		Role:        data.Role.String(),
		LastLoginAt: data.LastLoginAt,
		CreatedAt:   data.CreatedAt,
		Entitlement: fromEntitlementDomain(data.Entitlement),
	}
}
