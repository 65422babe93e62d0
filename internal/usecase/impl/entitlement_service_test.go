package impl

import (
	"context"
	"testing"
	"time"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entitlementServiceFixtures holds all test dependencies for entitlement service tests.
type entitlementServiceFixtures struct {
	service   usecase.EntitlementUsecase
	impl      *entitlementService
	factory   *fakeRepoFactory
	publisher *capturingPublisher
}

func createTestEntitlementService(t *testing.T) entitlementServiceFixtures {
	t.Helper()

	factory := newFakeRepoFactory()
	publisher := &capturingPublisher{}

	svc := NewEntitlementService(EntitlementServiceParams{
		TxManager:       &fakeTxManager{factory: factory},
		EntitlementRepo: factory.entitlementRepo,
		SavedRepo:       factory.savedRepo,
		PaymentRepo:     factory.paymentRepo,
		Publisher:       publisher,
		Logger:          newDiscardLogger(),
	})

	return entitlementServiceFixtures{
		service:   svc,
		impl:      svc.(*entitlementService),
		factory:   factory,
		publisher: publisher,
	}
}

// setNow pins the service clock to a fixed instant.
func (f entitlementServiceFixtures) setNow(now time.Time) {
	f.impl.now = func() time.Time { return now }
}

func TestEntitlementService_GetUsage_CreatesDefaultState(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	identityID := uuid.New()

	usage, err := fixtures.service.GetUsage(context.Background(), identityID)
	require.NoError(t, err)

	assert.Equal(t, entity.TierFree, usage.Tier)
	assert.Equal(t, 10, usage.Limits.ArticlesPerDay)
	assert.Zero(t, usage.ArticlesRead)
	assert.Zero(t, usage.SavedCount)
	assert.Nil(t, usage.TierExpiresAt)

	_, err = fixtures.factory.entitlementRepo.FindByIdentity(context.Background(), identityID)
	assert.NoError(t, err)
}

func TestEntitlementService_GetUsage_DailyReset(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	require.NoError(t, fixtures.factory.entitlementRepo.Create(context.Background(), &entity.Entitlement{
		IdentityID:   identityID,
		Tier:         entity.TierFree,
		ArticlesRead: 5,
		UsageResetAt: now.Add(-24 * time.Hour),
	}))

	usage, err := fixtures.service.GetUsage(context.Background(), identityID)
	require.NoError(t, err)
	assert.Zero(t, usage.ArticlesRead)
	assert.Equal(t, now, usage.UsageResetAt)
	assert.Equal(t, 1, fixtures.factory.entitlementRepo.resetCalls)

	// Same day again: the reset is not repeated.
	_, err = fixtures.service.GetUsage(context.Background(), identityID)
	require.NoError(t, err)
	assert.Equal(t, 1, fixtures.factory.entitlementRepo.resetCalls)
}

func TestEntitlementService_ReadArticle_ResetsBeforeMetering(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	// Yesterday's counter sits at 7; the read on a new UTC day zeroes it
	// before metering, so the read lands at 1 instead of 8.
	require.NoError(t, fixtures.factory.entitlementRepo.Create(ctx, &entity.Entitlement{
		IdentityID:   identityID,
		Tier:         entity.TierFree,
		ArticlesRead: 7,
		UsageResetAt: now.Add(-24 * time.Hour),
	}))

	read, err := fixtures.service.ReadArticle(ctx, identityID, "article-1")
	require.NoError(t, err)
	assert.Equal(t, 1, read.ArticlesRead)
}

func TestEntitlementService_ReadArticle_QuotaExhausted(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	for i := 1; i <= 10; i++ {
		read, err := fixtures.service.ReadArticle(ctx, identityID, "article-1")
		require.NoError(t, err)
		assert.Equal(t, i, read.ArticlesRead)
		assert.Equal(t, 10, read.Limit)
	}

	_, err := fixtures.service.ReadArticle(ctx, identityID, "article-1")
	var quotaErr *domainerrors.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 10, quotaErr.Limit)
	assert.Equal(t, 10, quotaErr.Used)
	assert.Equal(t, "free", quotaErr.Tier)

	assert.Contains(t, fixtures.publisher.eventTypes(), entity.AuditQuotaExceeded)
}

func TestEntitlementService_ReadArticle_UnlimitedTier(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	expiresAt := now.Add(tierValidity)
	require.NoError(t, fixtures.factory.entitlementRepo.Create(ctx, &entity.Entitlement{
		IdentityID:    identityID,
		Tier:          entity.TierPremium,
		TierExpiresAt: &expiresAt,
		UsageResetAt:  now,
	}))

	for i := 0; i < 100; i++ {
		_, err := fixtures.service.ReadArticle(ctx, identityID, "article-1")
		require.NoError(t, err)
	}
}

func TestEntitlementService_ReadArticle_ExpiredTierRevertsToFree(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	// The plus tier lapsed an hour ago; the counter already sits at the free
	// limit, so the next read must be rejected with free-tier numbers.
	expiredAt := now.Add(-time.Hour)
	require.NoError(t, fixtures.factory.entitlementRepo.Create(ctx, &entity.Entitlement{
		IdentityID:    identityID,
		Tier:          entity.TierPlus,
		TierExpiresAt: &expiredAt,
		ArticlesRead:  10,
		UsageResetAt:  now,
	}))

	_, err := fixtures.service.ReadArticle(ctx, identityID, "article-1")
	var quotaErr *domainerrors.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 10, quotaErr.Limit)
	assert.Equal(t, "free", quotaErr.Tier)
}

func TestEntitlementService_Upgrade_Success(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(now)

	out, err := fixtures.service.Upgrade(ctx, &usecase.UpgradeInput{
		IdentityID: identityID,
		Tier:       entity.TierPlus,
		PaymentID:  "pay_123",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TierPlus, out.Tier)
	assert.Equal(t, now.Add(30*24*time.Hour), out.TierExpiresAt)
	assert.Equal(t, 50, out.Limits.ArticlesPerDay)

	payments, err := fixtures.factory.paymentRepo.ListByIdentity(ctx, identityID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, entity.TierPlus, payments[0].Tier)
	assert.Equal(t, 120, payments[0].AmountTWD)
	assert.Equal(t, "pay_123", payments[0].Reference)

	state, err := fixtures.factory.entitlementRepo.FindByIdentity(ctx, identityID)
	require.NoError(t, err)
	assert.Equal(t, entity.TierPlus, state.Tier)

	assert.Contains(t, fixtures.publisher.eventTypes(), entity.AuditTierUpgraded)
}

func TestEntitlementService_Upgrade_RestartsValidityWindow(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	first := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	fixtures.setNow(first)
	_, err := fixtures.service.Upgrade(ctx, &usecase.UpgradeInput{
		IdentityID: identityID,
		Tier:       entity.TierPlus,
		PaymentID:  "pay_1",
	})
	require.NoError(t, err)

	// Upgrading again ten days later restarts the window; it is not additive.
	second := first.Add(10 * 24 * time.Hour)
	fixtures.setNow(second)
	out, err := fixtures.service.Upgrade(ctx, &usecase.UpgradeInput{
		IdentityID: identityID,
		Tier:       entity.TierPremium,
		PaymentID:  "pay_2",
	})
	require.NoError(t, err)
	assert.Equal(t, second.Add(30*24*time.Hour), out.TierExpiresAt)
}

func TestEntitlementService_Upgrade_InvalidTier(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()

	_, err := fixtures.service.Upgrade(ctx, &usecase.UpgradeInput{
		IdentityID: uuid.New(),
		Tier:       entity.Tier("platinum"),
		PaymentID:  "pay_1",
	})
	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TIER", appErr.ErrorCode())

	_, err = fixtures.service.Upgrade(ctx, &usecase.UpgradeInput{
		IdentityID: uuid.New(),
		Tier:       entity.TierFree,
		PaymentID:  "pay_2",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TIER", appErr.ErrorCode())
	assert.Empty(t, fixtures.factory.paymentRepo.payments)
}

func TestEntitlementService_ListTiers(t *testing.T) {
	fixtures := createTestEntitlementService(t)

	tiers := fixtures.service.ListTiers(context.Background())
	require.Len(t, tiers, 3)
	assert.Equal(t, entity.TierFree, tiers[0].ID)
	assert.Equal(t, entity.TierPlus, tiers[1].ID)
	assert.Equal(t, entity.TierPremium, tiers[2].ID)
	assert.Equal(t, entity.UnlimitedLimit, tiers[2].Limits.ArticlesPerDay)
}

func TestEntitlementService_SaveArticle_LimitReached(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	for i := 0; i < 20; i++ {
		_, err := fixtures.service.SaveArticle(ctx, &usecase.SaveArticleInput{
			IdentityID: identityID,
			ArticleID:  "article-" + uuid.NewString(),
		})
		require.NoError(t, err)
	}

	_, err := fixtures.service.SaveArticle(ctx, &usecase.SaveArticleInput{
		IdentityID: identityID,
		ArticleID:  "one-too-many",
	})
	assert.ErrorIs(t, err, domainerrors.ErrSavedLimitExceeded)
}

func TestEntitlementService_SaveArticle_Duplicate(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	input := &usecase.SaveArticleInput{
		IdentityID: identityID,
		ArticleID:  "article-1",
		Title:      "First",
	}
	_, err := fixtures.service.SaveArticle(ctx, input)
	require.NoError(t, err)

	_, err = fixtures.service.SaveArticle(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrArticleAlreadySaved)
}

func TestEntitlementService_SavedArticles_Roundtrip(t *testing.T) {
	fixtures := createTestEntitlementService(t)
	ctx := context.Background()
	identityID := uuid.New()

	_, err := fixtures.service.SaveArticle(ctx, &usecase.SaveArticleInput{
		IdentityID: identityID,
		ArticleID:  "article-1",
		Title:      "First",
	})
	require.NoError(t, err)

	saved, err := fixtures.service.ListSavedArticles(ctx, identityID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "article-1", saved[0].ArticleID)

	require.NoError(t, fixtures.service.RemoveSavedArticle(ctx, identityID, "article-1"))

	saved, err = fixtures.service.ListSavedArticles(ctx, identityID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestEntitlementService_RemoveSavedArticle_NotFound(t *testing.T) {
	fixtures := createTestEntitlementService(t)

	err := fixtures.service.RemoveSavedArticle(context.Background(), uuid.New(), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrSavedArticleNotFound)
}
