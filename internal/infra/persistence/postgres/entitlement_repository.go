package postgres

import (
	"context"
	"time"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entitlementRepository implements the domain.EntitlementRepository interface.
// The usage primitives are single conditional UPDATE statements so that
// concurrent requests serialize inside PostgreSQL instead of racing in Go.
type entitlementRepository struct {
	db *gorm.DB
}

// NewEntitlementRepository is the constructor for entitlementRepository.
func NewEntitlementRepository(db *gorm.DB) repository.EntitlementRepository {
	return &entitlementRepository{db: db}
}

// FindByIdentity retrieves the entitlement state for an identity.
func (repo *entitlementRepository) FindByIdentity(ctx context.Context, identityID uuid.UUID) (*entity.Entitlement, error) {
	var entitlementM model.EntitlementModel

	err := repo.db.WithContext(ctx).
		First(&entitlementM, "identity_id = ?", identityID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntitlementNotFound
		}

		return nil, wrapQueryError(err, "failed to find entitlement")
	}

	return toEntitlementDomain(&entitlementM), nil
}

// Create persists a new entitlement state row.
func (repo *entitlementRepository) Create(ctx context.Context, entitlement *entity.Entitlement) error {
	entitlementM := fromEntitlementDomain(entitlement)

	if err := repo.db.WithContext(ctx).Create(entitlementM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("entitlement already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("invalid identity reference")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrInvalidTier
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to create entitlement")
	}

	entitlement.UsageResetAt = entitlementM.UsageResetAt
	entitlement.CreatedAt = entitlementM.CreatedAt
	entitlement.UpdatedAt = entitlementM.UpdatedAt

	return nil
}

// ResetDailyUsage zeroes the daily counters, guarded by the stored reset
// marker. Concurrent racers issue the same UPDATE; whoever loses matches zero
// rows, which is the intended no-op.
func (repo *entitlementRepository) ResetDailyUsage(ctx context.Context, identityID uuid.UUID, resetAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.EntitlementModel{}).
		Where("identity_id = ? AND usage_reset_at < ?", identityID, resetAt).
		Updates(map[string]any{
			"articles_read":  0,
			"usage_reset_at": resetAt,
		})

	if result.Error != nil {
		return wrapQueryError(result.Error, "failed to reset daily usage")
	}

	return nil
}

// IncrementArticlesRead consumes one metered read. The guard and the
// increment live in one UPDATE, so the counter can never pass the limit no
// matter how many requests hit it at once. RETURNING hands back the consumed
// count without a second round trip.
func (repo *entitlementRepository) IncrementArticlesRead(ctx context.Context, identityID uuid.UUID, limit int, at time.Time) (int, error) {
	var entitlementM model.EntitlementModel

	query := repo.db.WithContext(ctx).
		Model(&entitlementM).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "articles_read"}}})

	if limit == entity.UnlimitedLimit {
		query = query.Where("identity_id = ?", identityID)
	} else {
		query = query.Where("identity_id = ? AND articles_read < ?", identityID, limit)
	}

	result := query.Updates(map[string]any{
		"articles_read":    gorm.Expr("articles_read + 1"),
		"last_activity_at": at,
	})

	if result.Error != nil {
		return 0, wrapQueryError(result.Error, "failed to increment articles read")
	}

	if result.RowsAffected == 0 {
		// Either the row is missing or the counter sits at the limit.
		// Read back to tell the two apart and report the consumed count.
		current, err := repo.FindByIdentity(ctx, identityID)
		if err != nil {
			return 0, err
		}

		return current.ArticlesRead, repository.ErrQuotaLimitReached
	}

	return entitlementM.ArticlesRead, nil
}

// UpsertTier sets the purchased tier and its expiry, inserting the row when
// none exists. Usage counters on an existing row are left untouched.
func (repo *entitlementRepository) UpsertTier(ctx context.Context, identityID uuid.UUID, tier entity.Tier, expiresAt time.Time) error {
	entitlementM := model.EntitlementModel{
		IdentityID:    identityID,
		Tier:          string(tier),
		TierExpiresAt: &expiresAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "identity_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"tier":            string(tier),
				"tier_expires_at": expiresAt,
				"updated_at":      gorm.Expr("now()"),
			}),
		}).
		Create(&entitlementM).Error
	if err != nil {
		// Convert PostgreSQL errors to domain errors
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrInvalidTier
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("invalid identity reference")
		}
		// For other database errors, return a generic database error
		return translateExecError(err, "failed to upsert tier")
	}

	return nil
}

// --- Mapper Functions ---

// toEntitlementDomain converts a GORM EntitlementModel to a domain Entitlement entity.
func toEntitlementDomain(data *model.EntitlementModel) *entity.Entitlement {
	if data == nil {
		return nil
	}

	return &entity.Entitlement{
		IdentityID:     data.IdentityID,
		Tier:           entity.Tier(data.Tier),
		TierExpiresAt:  data.TierExpiresAt,
		ArticlesRead:   data.ArticlesRead,
		UsageResetAt:   data.UsageResetAt,
		LastActivityAt: data.LastActivityAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromEntitlementDomain converts a domain Entitlement entity to a GORM EntitlementModel.
func fromEntitlementDomain(data *entity.Entitlement) *model.EntitlementModel {
	if data == nil {
		return nil
	}

	return &model.EntitlementModel{
		IdentityID:     data.IdentityID,
		Tier:           string(data.Tier),
		TierExpiresAt:  data.TierExpiresAt,
		ArticlesRead:   data.ArticlesRead,
		UsageResetAt:   data.UsageResetAt,
		LastActivityAt: data.LastActivityAt,
		CreatedAt:      data.CreatedAt,
	}
}
