package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "kiosk/internal/delivery/context"
	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/domain/service"
	"kiosk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tierValidity is how long a purchased tier lasts. Every upgrade restarts
// the window from the purchase instant; it is not additive.
const tierValidity = 30 * 24 * time.Hour

// entitlementService implements the EntitlementUsecase interface. All state
// transitions are lazy: tier expiry and the daily reset are evaluated on the
// request path, never by a scheduler.
type entitlementService struct {
	txManager       repository.TransactionManager
	entitlementRepo repository.EntitlementRepository
	savedRepo       repository.SavedArticleRepository
	paymentRepo     repository.PaymentRepository
	publisher       service.EventPublisher
	catalog         []entity.TierSpec
	logger          *slog.Logger
	now             func() time.Time
}

// EntitlementServiceParams holds dependencies for entitlementService, injected by Fx.
type EntitlementServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	EntitlementRepo repository.EntitlementRepository
	SavedRepo       repository.SavedArticleRepository
	PaymentRepo     repository.PaymentRepository
	Publisher       service.EventPublisher
	Logger          *slog.Logger
}

// NewEntitlementService is the constructor for entitlementService. The tier
// catalog is loaded once here and treated as immutable afterwards.
func NewEntitlementService(params EntitlementServiceParams) usecase.EntitlementUsecase {
	return &entitlementService{
		txManager:       params.TxManager,
		entitlementRepo: params.EntitlementRepo,
		savedRepo:       params.SavedRepo,
		paymentRepo:     params.PaymentRepo,
		publisher:       params.Publisher,
		catalog:         entity.DefaultTierCatalog(),
		logger:          params.Logger,
		now:             time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *entitlementService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetUsage returns the effective tier, its limits and today's counters.
func (srv *entitlementService) GetUsage(ctx context.Context, identityID uuid.UUID) (*usecase.UsageOutput, error) {
	entitlement, err := srv.loadEntitlement(ctx, identityID)
	if err != nil {
		return nil, err
	}

	savedCount, err := srv.savedRepo.CountByIdentity(ctx, identityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count saved articles")
	}

	now := srv.now()
	effective := entitlement.EffectiveTier(now)

	return &usecase.UsageOutput{
		Tier:          effective,
		Limits:        srv.limitsFor(effective),
		ArticlesRead:  entitlement.ArticlesRead,
		SavedCount:    savedCount,
		TierExpiresAt: entitlement.TierExpiresAt,
		UsageResetAt:  entitlement.UsageResetAt,
	}, nil
}

// ReadArticle consumes one metered read. The daily reset runs first as its
// own idempotent write; the quota guard and the increment are one atomic
// store primitive, so two racing reads can never both take the last slot.
func (srv *entitlementService) ReadArticle(ctx context.Context, identityID uuid.UUID, articleID string) (*usecase.ReadOutput, error) {
	entitlement, err := srv.loadEntitlement(ctx, identityID)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	effective := entitlement.EffectiveTier(now)
	limit := srv.limitsFor(effective).ArticlesPerDay

	consumed, err := srv.entitlementRepo.IncrementArticlesRead(ctx, identityID, limit, now)
	if err != nil {
		if errors.Is(err, repository.ErrQuotaLimitReached) {
			srv.log(ctx).Info("Daily article quota exhausted",
				slog.Any("identityID", identityID),
				slog.Int("limit", limit),
				slog.String("tier", effective.String()))
			srv.publishAuditEvent(ctx, entity.AuditQuotaExceeded, identityID, map[string]any{
				"tier":  effective.String(),
				"limit": limit,
				"used":  consumed,
			})

			return nil, domainerrors.NewQuotaExceededError(limit, consumed, effective.String())
		}

		return nil, errors.Wrap(err, "failed to increment article usage")
	}

	srv.log(ctx).Debug("Metered article read",
		slog.Any("identityID", identityID),
		slog.String("articleID", articleID),
		slog.Int("articlesRead", consumed))

	return &usecase.ReadOutput{
		Tier:         effective,
		ArticlesRead: consumed,
		Limit:        limit,
	}, nil
}

// Upgrade purchases a paid tier. The expiry is always 30 days from now, the
// payment row is appended in the same transaction, and upsert semantics make
// the call succeed even for an account with no entitlement row yet.
func (srv *entitlementService) Upgrade(ctx context.Context, input *usecase.UpgradeInput) (*usecase.UpgradeOutput, error) {
	spec, ok := srv.findSpec(input.Tier)
	if !ok {
		return nil, domainerrors.ErrInvalidTier.WithDetails("unknown tier: " + input.Tier.String())
	}
	if spec.ID == entity.TierFree {
		return nil, domainerrors.ErrInvalidTier.WithDetails("the free tier cannot be purchased")
	}

	now := srv.now()
	expiresAt := now.Add(tierValidity)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if upsertErr := repoFactory.EntitlementRepo().UpsertTier(ctx, input.IdentityID, spec.ID, expiresAt); upsertErr != nil {
			return errors.Wrap(upsertErr, "failed to upsert tier")
		}

		payment := &entity.Payment{
			IdentityID: input.IdentityID,
			Tier:       spec.ID,
			AmountTWD:  spec.PriceMonth,
			Reference:  input.PaymentID,
		}
		if createErr := repoFactory.PaymentRepo().Create(ctx, payment); createErr != nil {
			return errors.Wrap(createErr, "failed to record payment")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Tier upgrade failed",
			slog.Any("identityID", input.IdentityID),
			slog.String("tier", spec.ID.String()),
			slog.Any("error", err))

		return nil, err
	}

	srv.publishAuditEvent(ctx, entity.AuditTierUpgraded, input.IdentityID, map[string]any{
		"tier":       spec.ID.String(),
		"amount_twd": spec.PriceMonth,
		"payment_id": input.PaymentID,
		"expires_at": expiresAt,
	})
	srv.log(ctx).Info("Tier upgraded",
		slog.Any("identityID", input.IdentityID),
		slog.String("tier", spec.ID.String()))

	return &usecase.UpgradeOutput{
		Tier:          spec.ID,
		TierExpiresAt: expiresAt,
		Limits:        spec.Limits,
	}, nil
}

// ListTiers exposes the static tier catalog.
func (srv *entitlementService) ListTiers(_ context.Context) []entity.TierSpec {
	catalog := make([]entity.TierSpec, len(srv.catalog))
	copy(catalog, srv.catalog)

	return catalog
}

// SaveArticle adds an entry to the saved list, capped by the effective
// tier's limit.
func (srv *entitlementService) SaveArticle(ctx context.Context, input *usecase.SaveArticleInput) (*entity.SavedArticle, error) {
	entitlement, err := srv.loadEntitlement(ctx, input.IdentityID)
	if err != nil {
		return nil, err
	}

	limit := srv.limitsFor(entitlement.EffectiveTier(srv.now())).SavedArticles
	if limit != entity.UnlimitedLimit {
		count, countErr := srv.savedRepo.CountByIdentity(ctx, input.IdentityID)
		if countErr != nil {
			return nil, errors.Wrap(countErr, "failed to count saved articles")
		}
		if count >= int64(limit) {
			return nil, domainerrors.ErrSavedLimitExceeded
		}
	}

	saved := &entity.SavedArticle{
		IdentityID: input.IdentityID,
		ArticleID:  input.ArticleID,
		Title:      input.Title,
	}
	if err := srv.savedRepo.Create(ctx, saved); err != nil {
		if errors.Is(err, repository.ErrSavedArticleExists) {
			return nil, domainerrors.ErrArticleAlreadySaved
		}

		return nil, errors.Wrap(err, "failed to save article")
	}

	return saved, nil
}

// ListSavedArticles returns the saved list, newest first.
func (srv *entitlementService) ListSavedArticles(ctx context.Context, identityID uuid.UUID) ([]*entity.SavedArticle, error) {
	saved, err := srv.savedRepo.ListByIdentity(ctx, identityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list saved articles")
	}

	return saved, nil
}

// RemoveSavedArticle deletes one saved entry by article id.
func (srv *entitlementService) RemoveSavedArticle(ctx context.Context, identityID uuid.UUID, articleID string) error {
	if err := srv.savedRepo.Delete(ctx, identityID, articleID); err != nil {
		if errors.Is(err, repository.ErrSavedArticleNotFound) {
			return domainerrors.ErrSavedArticleNotFound
		}

		return errors.Wrap(err, "failed to remove saved article")
	}

	return nil
}

// loadEntitlement fetches the entitlement state, creating default free-tier
// state the first time an account is metered, and applies the lazy daily
// reset before handing the state back.
func (srv *entitlementService) loadEntitlement(ctx context.Context, identityID uuid.UUID) (*entity.Entitlement, error) {
	entitlement, err := srv.entitlementRepo.FindByIdentity(ctx, identityID)
	if errors.Is(err, repository.ErrEntitlementNotFound) {
		entitlement = &entity.Entitlement{
			IdentityID:   identityID,
			Tier:         entity.TierFree,
			UsageResetAt: srv.now().UTC(),
		}
		if createErr := srv.entitlementRepo.Create(ctx, entitlement); createErr != nil {
			// A concurrent request may have created the row first; the
			// duplicate insert loses and reads the winner's state.
			entitlement, err = srv.entitlementRepo.FindByIdentity(ctx, identityID)
			if err != nil {
				return nil, errors.Wrap(err, "failed to load entitlement after create race")
			}
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to load entitlement")
	}

	now := srv.now()
	if entitlement.NeedsDailyReset(now) {
		if resetErr := srv.entitlementRepo.ResetDailyUsage(ctx, identityID, now.UTC()); resetErr != nil {
			return nil, errors.Wrap(resetErr, "failed to reset daily usage")
		}
		entitlement.ArticlesRead = 0
		entitlement.UsageResetAt = now.UTC()
	}

	return entitlement, nil
}

// limitsFor resolves the limit set of a tier, falling back to the free tier
// for anything the catalog does not know.
func (srv *entitlementService) limitsFor(tier entity.Tier) entity.TierLimits {
	if spec, ok := srv.findSpec(tier); ok {
		return spec.Limits
	}

	free, _ := srv.findSpec(entity.TierFree)

	return free.Limits
}

func (srv *entitlementService) findSpec(tier entity.Tier) (entity.TierSpec, bool) {
	for _, spec := range srv.catalog {
		if spec.ID == tier {
			return spec, true
		}
	}

	return entity.TierSpec{}, false
}

// publishAuditEvent sends an audit event on a best-effort basis.
func (srv *entitlementService) publishAuditEvent(ctx context.Context, eventType string, identityID uuid.UUID, detail map[string]any) {
	event := &service.AuditEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		IdentityID: identityID.String(),
		OccurredAt: srv.now(),
		Detail:     detail,
	}

	if err := srv.publisher.PublishAuditEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish audit event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}
