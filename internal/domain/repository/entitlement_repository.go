package repository

import (
	"context"
	"errors"
	"time"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrEntitlementNotFound is a domain-specific error returned when no entitlement state exists.
var ErrEntitlementNotFound = errors.New("entitlement not found")

// ErrQuotaLimitReached is returned by IncrementArticlesRead when the
// conditional increment finds the counter already at the limit.
var ErrQuotaLimitReached = errors.New("article quota limit reached")

// EntitlementRepository defines the operations for entitlement state
// persistence. The usage primitives are atomic at the store level; callers
// must never implement them as read-modify-write.
type EntitlementRepository interface {
	// FindByIdentity retrieves the entitlement state for an identity.
	FindByIdentity(ctx context.Context, identityID uuid.UUID) (*entity.Entitlement, error)

	// Create persists a new entitlement state row.
	Create(ctx context.Context, entitlement *entity.Entitlement) error

	// ResetDailyUsage zeroes the daily counters and stamps the reset marker,
	// but only when the stored marker predates the given UTC day. The write is
	// idempotent; concurrent racers are benign.
	ResetDailyUsage(ctx context.Context, identityID uuid.UUID, resetAt time.Time) error

	// IncrementArticlesRead atomically increments the read counter while it is
	// below limit and stamps the activity time, returning the consumed count
	// after the call. A limit of entity.UnlimitedLimit never fails. When the
	// counter is already at limit it returns the current count together with
	// ErrQuotaLimitReached, without incrementing.
	IncrementArticlesRead(ctx context.Context, identityID uuid.UUID, limit int, at time.Time) (int, error)

	// UpsertTier sets the purchased tier and its expiry, creating the
	// entitlement row when none exists. Usage counters on an existing row are
	// left untouched.
	UpsertTier(ctx context.Context, identityID uuid.UUID, tier entity.Tier, expiresAt time.Time) error
}
