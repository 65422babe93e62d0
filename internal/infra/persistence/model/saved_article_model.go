package model

import (
	"time"

	"github.com/google/uuid"
)

// SavedArticleModel mirrors the 'saved_articles' table. The composite unique
// index keeps an article saved at most once per identity.
type SavedArticleModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_saved_articles_identity_article"`
	ArticleID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_saved_articles_identity_article"`
	Title      string    `gorm:"type:varchar(500)"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (SavedArticleModel) TableName() string {
	return "saved_articles"
}
