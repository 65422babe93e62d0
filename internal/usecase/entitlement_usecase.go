package usecase

import (
	"context"
	"time"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// UpgradeInput defines the data required to purchase a tier upgrade.
type UpgradeInput struct {
	IdentityID uuid.UUID
	Tier       entity.Tier
	PaymentID  string
}

// SaveArticleInput defines the data required to add a saved-article entry.
type SaveArticleInput struct {
	IdentityID uuid.UUID
	ArticleID  string
	Title      string
}

// --- Output DTOs ---

// UsageOutput is a snapshot of the effective tier and today's consumption.
type UsageOutput struct {
	Tier          entity.Tier
	Limits        entity.TierLimits
	ArticlesRead  int
	SavedCount    int64
	TierExpiresAt *time.Time
	UsageResetAt  time.Time
}

// ReadOutput reports the usage state after a metered article read.
type ReadOutput struct {
	Tier         entity.Tier
	ArticlesRead int
	Limit        int
}

// UpgradeOutput returns the purchased tier and its new validity window.
type UpgradeOutput struct {
	Tier          entity.Tier
	TierExpiresAt time.Time
	Limits        entity.TierLimits
}

// EntitlementUsecase defines the interface for tier and quota operations.
// Every operation evaluates tier expiry and the daily reset lazily; there is
// no background job mutating entitlement state.
type EntitlementUsecase interface {
	// GetUsage returns the effective tier, its limits and today's counters,
	// creating default free-tier state for an account seen for the first time.
	GetUsage(ctx context.Context, identityID uuid.UUID) (*UsageOutput, error)

	// ReadArticle consumes one metered read, enforcing the daily quota
	// atomically. A tier with an unlimited cap never fails.
	ReadArticle(ctx context.Context, identityID uuid.UUID, articleID string) (*ReadOutput, error)

	// Upgrade purchases a paid tier for 30 days and records the payment.
	Upgrade(ctx context.Context, input *UpgradeInput) (*UpgradeOutput, error)

	// ListTiers exposes the static tier catalog.
	ListTiers(ctx context.Context) []entity.TierSpec

	// SaveArticle adds an entry to the saved list, capped by the tier limit.
	SaveArticle(ctx context.Context, input *SaveArticleInput) (*entity.SavedArticle, error)

	// ListSavedArticles returns the saved list, newest first.
	ListSavedArticles(ctx context.Context, identityID uuid.UUID) ([]*entity.SavedArticle, error)

	// RemoveSavedArticle deletes one saved entry by article id.
	RemoveSavedArticle(ctx context.Context, identityID uuid.UUID, articleID string) error
}
