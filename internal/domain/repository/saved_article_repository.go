package repository

import (
	"context"
	"errors"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSavedArticleNotFound is a domain-specific error returned when a saved entry is not found.
var ErrSavedArticleNotFound = errors.New("saved article not found")

// ErrSavedArticleExists is returned when the article is already in the list.
var ErrSavedArticleExists = errors.New("article already saved")

// SavedArticleRepository defines the operations for the saved-article list.
type SavedArticleRepository interface {
	// ListByIdentity retrieves the saved entries for an identity, newest first.
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.SavedArticle, error)

	// CountByIdentity returns the number of saved entries for an identity.
	CountByIdentity(ctx context.Context, identityID uuid.UUID) (int64, error)

	// Create persists a new saved entry. Saving the same article twice yields
	// ErrSavedArticleExists.
	Create(ctx context.Context, saved *entity.SavedArticle) error

	// Delete removes a saved entry by article id.
	Delete(ctx context.Context, identityID uuid.UUID, articleID string) error
}
