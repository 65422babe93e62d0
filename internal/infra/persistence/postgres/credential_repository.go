package postgres

import (
	"context"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// credentialRepository implements the domain.CredentialRepository interface.
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository is the constructor for credentialRepository.
func NewCredentialRepository(db *gorm.DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

// FindByProvider retrieves a credential by its provider and provider-specific ID.
func (repo *credentialRepository) FindByProvider(ctx context.Context, provider entity.Provider, providerUserID string) (*entity.Credential, error) {
	var credentialM model.CredentialModel

	err := repo.db.WithContext(ctx).
		First(&credentialM, "provider = ? AND provider_user_id = ?", string(provider), providerUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCredentialNotFound
		}

		return nil, wrapQueryError(err, "failed to find credential")
	}

	return toCredentialDomain(&credentialM), nil
}

// ListByIdentity returns all credentials linked to a specific identity.
func (repo *credentialRepository) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.Credential, error) {
	var credentialModels []*model.CredentialModel

	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Find(&credentialModels).Error
	if err != nil {
		return nil, wrapQueryError(err, "failed to list credentials")
	}

	credentials := make([]*entity.Credential, 0, len(credentialModels))
	for _, credentialM := range credentialModels {
		credentials = append(credentials, toCredentialDomain(credentialM))
	}

	return credentials, nil
}

// Create persists a new credential record.
func (repo *credentialRepository) Create(ctx context.Context, credential *entity.Credential) error {
	credentialM := fromCredentialDomain(credential)

	if err := repo.db.WithContext(ctx).Create(credentialM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("credential already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid identity reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required credential information")
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to create credential")
	}

	// Update the entity with generated values
	credential.ID = credentialM.ID
	credential.CreatedAt = credentialM.CreatedAt

	return nil
}

// --- Mapper Functions ---

// toCredentialDomain converts a GORM CredentialModel to a domain Credential entity.
func toCredentialDomain(data *model.CredentialModel) *entity.Credential {
	if data == nil {
		return nil
	}

	return &entity.Credential{
		ID:             data.ID,
		IdentityID:     data.IdentityID,
		Provider:       entity.Provider(data.Provider),
		ProviderUserID: data.ProviderUserID,
		PasswordHash:   data.PasswordHash,
		CreatedAt:      data.CreatedAt,
	}
}

// fromCredentialDomain converts a domain Credential entity to a GORM CredentialModel.
func fromCredentialDomain(data *entity.Credential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:             data.ID,
		IdentityID:     data.IdentityID,
		Provider:       string(data.Provider),
		ProviderUserID: data.ProviderUserID,
		PasswordHash:   data.PasswordHash,
	}
}
