package postgres

import (
	"context"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// savedArticleRepository implements the domain.SavedArticleRepository interface.
type savedArticleRepository struct {
	db *gorm.DB
}

// NewSavedArticleRepository is the constructor for savedArticleRepository.
func NewSavedArticleRepository(db *gorm.DB) repository.SavedArticleRepository {
	return &savedArticleRepository{db: db}
}

// ListByIdentity returns an identity's saved articles, newest first.
func (repo *savedArticleRepository) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.SavedArticle, error) {
	var savedModels []*model.SavedArticleModel

	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at DESC").
		Find(&savedModels).Error
	if err != nil {
		return nil, wrapQueryError(err, "failed to list saved articles")
	}

	saved := make([]*entity.SavedArticle, 0, len(savedModels))
	for _, savedM := range savedModels {
		saved = append(saved, toSavedArticleDomain(savedM))
	}

	return saved, nil
}

// CountByIdentity returns the number of saved entries for an identity.
func (repo *savedArticleRepository) CountByIdentity(ctx context.Context, identityID uuid.UUID) (int64, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.SavedArticleModel{}).
		Where("identity_id = ?", identityID).
		Count(&count).Error
	if err != nil {
		return 0, wrapQueryError(err, "failed to count saved articles")
	}

	return count, nil
}

// Create persists a new saved entry. The composite unique index turns a
// double save into ErrSavedArticleExists.
func (repo *savedArticleRepository) Create(ctx context.Context, saved *entity.SavedArticle) error {
	savedM := fromSavedArticleDomain(saved)

	if err := repo.db.WithContext(ctx).Create(savedM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrSavedArticleExists
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to save article")
	}

	// Update the entity with generated values
	saved.ID = savedM.ID
	saved.SavedAt = savedM.CreatedAt

	return nil
}

// Delete removes a saved entry by article id.
func (repo *savedArticleRepository) Delete(ctx context.Context, identityID uuid.UUID, articleID string) error {
	result := repo.db.WithContext(ctx).
		Where("identity_id = ? AND article_id = ?", identityID, articleID).
		Delete(&model.SavedArticleModel{})

	if result.Error != nil {
		return wrapQueryError(result.Error, "failed to remove saved article")
	}

	// If no rows were affected, the entry was not found.
	if result.RowsAffected == 0 {
		return repository.ErrSavedArticleNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toSavedArticleDomain converts a GORM SavedArticleModel to a domain SavedArticle entity.
func toSavedArticleDomain(data *model.SavedArticleModel) *entity.SavedArticle {
	if data == nil {
		return nil
	}

	return &entity.SavedArticle{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		ArticleID:  data.ArticleID,
		Title:      data.Title,
		SavedAt:    data.CreatedAt,
	}
}

// fromSavedArticleDomain converts a domain SavedArticle entity to a GORM SavedArticleModel.
func fromSavedArticleDomain(data *entity.SavedArticle) *model.SavedArticleModel {
	if data == nil {
		return nil
	}

	return &model.SavedArticleModel{
		ID:         data.ID,
		IdentityID: data.IdentityID,
		ArticleID:  data.ArticleID,
		Title:      data.Title,
	}
}
