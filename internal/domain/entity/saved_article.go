package entity

import (
	"time"

	"github.com/google/uuid"
)

// SavedArticle is one entry in an account's saved-article list. The list
// length is capped by the effective tier's SavedArticles limit.
type SavedArticle struct {
	ID         uuid.UUID // The unique ID for this saved entry.
	IdentityID uuid.UUID // The account that saved the article.
	ArticleID  string    // External article identifier from the content system.
	Title      string    // Article title captured at save time.
	SavedAt    time.Time // Timestamp of when the article was saved.
}
