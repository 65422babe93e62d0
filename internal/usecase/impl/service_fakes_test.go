package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/repository"
	"kiosk/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepoFactory hands out the same in-memory repositories whether called
// inside or outside a transaction.
type fakeRepoFactory struct {
	identityRepo    *fakeIdentityRepo
	credentialRepo  *fakeCredentialRepo
	entitlementRepo *fakeEntitlementRepo
	savedRepo       *fakeSavedArticleRepo
	paymentRepo     *fakePaymentRepo
}

func newFakeRepoFactory() *fakeRepoFactory {
	return &fakeRepoFactory{
		identityRepo:    newFakeIdentityRepo(),
		credentialRepo:  &fakeCredentialRepo{},
		entitlementRepo: newFakeEntitlementRepo(),
		savedRepo:       &fakeSavedArticleRepo{},
		paymentRepo:     &fakePaymentRepo{},
	}
}

func (f *fakeRepoFactory) IdentityRepo() repository.IdentityRepository { return f.identityRepo }
func (f *fakeRepoFactory) CredentialRepo() repository.CredentialRepository {
	return f.credentialRepo
}
func (f *fakeRepoFactory) EntitlementRepo() repository.EntitlementRepository {
	return f.entitlementRepo
}
func (f *fakeRepoFactory) SavedArticleRepo() repository.SavedArticleRepository {
	return f.savedRepo
}
func (f *fakeRepoFactory) PaymentRepo() repository.PaymentRepository { return f.paymentRepo }

type fakeTxManager struct {
	factory *fakeRepoFactory
	execErr error
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	if m.execErr != nil {
		return m.execErr
	}

	return fn(m.factory)
}

type fakeIdentityRepo struct {
	identities map[uuid.UUID]*entity.Identity
	createErr  error
	touchErr   error
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[uuid.UUID]*entity.Identity)}
}

func (r *fakeIdentityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Identity, error) {
	identity, ok := r.identities[id]
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}

	return identity, nil
}

func (r *fakeIdentityRepo) FindByEmail(_ context.Context, email string) (*entity.Identity, error) {
	for _, identity := range r.identities {
		if identity.Email != "" && identity.Email == email {
			return identity, nil
		}
	}

	return nil, repository.ErrIdentityNotFound
}

func (r *fakeIdentityRepo) FindByUsername(_ context.Context, username string) (*entity.Identity, error) {
	for _, identity := range r.identities {
		if identity.Username == username {
			return identity, nil
		}
	}

	return nil, repository.ErrIdentityNotFound
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity *entity.Identity) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.identities {
		if existing.Username == identity.Username {
			return domainerrors.ErrUsernameAlreadyExists
		}
		if identity.Email != "" && existing.Email == identity.Email {
			return domainerrors.ErrEmailAlreadyExists
		}
	}
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	identity.CreatedAt = time.Now()
	r.identities[identity.ID] = identity

	return nil
}

func (r *fakeIdentityRepo) Update(_ context.Context, identity *entity.Identity) error {
	if _, ok := r.identities[identity.ID]; !ok {
		return repository.ErrIdentityNotFound
	}
	r.identities[identity.ID] = identity

	return nil
}

func (r *fakeIdentityRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	identity, ok := r.identities[id]
	if !ok {
		return repository.ErrIdentityNotFound
	}
	identity.LastLoginAt = &at

	return nil
}

type fakeCredentialRepo struct {
	credentials []*entity.Credential
	createErr   error
}

func (r *fakeCredentialRepo) FindByProvider(_ context.Context, provider entity.Provider, providerUserID string) (*entity.Credential, error) {
	for _, credential := range r.credentials {
		if credential.Provider == provider && credential.ProviderUserID == providerUserID {
			return credential, nil
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (r *fakeCredentialRepo) ListByIdentity(_ context.Context, identityID uuid.UUID) ([]*entity.Credential, error) {
	var out []*entity.Credential
	for _, credential := range r.credentials {
		if credential.IdentityID == identityID {
			out = append(out, credential)
		}
	}

	return out, nil
}

func (r *fakeCredentialRepo) Create(_ context.Context, credential *entity.Credential) error {
	if r.createErr != nil {
		return r.createErr
	}
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	r.credentials = append(r.credentials, credential)

	return nil
}

type fakeEntitlementRepo struct {
	states     map[uuid.UUID]*entity.Entitlement
	resetCalls int
}

func newFakeEntitlementRepo() *fakeEntitlementRepo {
	return &fakeEntitlementRepo{states: make(map[uuid.UUID]*entity.Entitlement)}
}

func (r *fakeEntitlementRepo) FindByIdentity(_ context.Context, identityID uuid.UUID) (*entity.Entitlement, error) {
	state, ok := r.states[identityID]
	if !ok {
		return nil, repository.ErrEntitlementNotFound
	}
	snapshot := *state

	return &snapshot, nil
}

func (r *fakeEntitlementRepo) Create(_ context.Context, entitlement *entity.Entitlement) error {
	if _, ok := r.states[entitlement.IdentityID]; ok {
		return errors.New("duplicate entitlement row")
	}
	snapshot := *entitlement
	r.states[entitlement.IdentityID] = &snapshot

	return nil
}

func (r *fakeEntitlementRepo) ResetDailyUsage(_ context.Context, identityID uuid.UUID, resetAt time.Time) error {
	state, ok := r.states[identityID]
	if !ok {
		return repository.ErrEntitlementNotFound
	}
	r.resetCalls++
	state.ArticlesRead = 0
	state.UsageResetAt = resetAt

	return nil
}

func (r *fakeEntitlementRepo) IncrementArticlesRead(_ context.Context, identityID uuid.UUID, limit int, at time.Time) (int, error) {
	state, ok := r.states[identityID]
	if !ok {
		return 0, repository.ErrEntitlementNotFound
	}
	if limit != entity.UnlimitedLimit && state.ArticlesRead >= limit {
		return state.ArticlesRead, repository.ErrQuotaLimitReached
	}
	state.ArticlesRead++
	state.LastActivityAt = &at

	return state.ArticlesRead, nil
}

func (r *fakeEntitlementRepo) UpsertTier(_ context.Context, identityID uuid.UUID, tier entity.Tier, expiresAt time.Time) error {
	state, ok := r.states[identityID]
	if !ok {
		r.states[identityID] = &entity.Entitlement{
			IdentityID:    identityID,
			Tier:          tier,
			TierExpiresAt: &expiresAt,
			UsageResetAt:  time.Now().UTC(),
		}

		return nil
	}
	state.Tier = tier
	state.TierExpiresAt = &expiresAt

	return nil
}

type fakeSavedArticleRepo struct {
	entries   []*entity.SavedArticle
	createErr error
}

func (r *fakeSavedArticleRepo) ListByIdentity(_ context.Context, identityID uuid.UUID) ([]*entity.SavedArticle, error) {
	var out []*entity.SavedArticle
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].IdentityID == identityID {
			out = append(out, r.entries[i])
		}
	}

	return out, nil
}

func (r *fakeSavedArticleRepo) CountByIdentity(_ context.Context, identityID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range r.entries {
		if entry.IdentityID == identityID {
			count++
		}
	}

	return count, nil
}

func (r *fakeSavedArticleRepo) Create(_ context.Context, saved *entity.SavedArticle) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, entry := range r.entries {
		if entry.IdentityID == saved.IdentityID && entry.ArticleID == saved.ArticleID {
			return repository.ErrSavedArticleExists
		}
	}
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	saved.SavedAt = time.Now()
	r.entries = append(r.entries, saved)

	return nil
}

func (r *fakeSavedArticleRepo) Delete(_ context.Context, identityID uuid.UUID, articleID string) error {
	for i, entry := range r.entries {
		if entry.IdentityID == identityID && entry.ArticleID == articleID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)

			return nil
		}
	}

	return repository.ErrSavedArticleNotFound
}

type fakePaymentRepo struct {
	payments []*entity.Payment
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, payment)

	return nil
}

func (r *fakePaymentRepo) ListByIdentity(_ context.Context, identityID uuid.UUID) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].IdentityID == identityID {
			out = append(out, r.payments[i])
		}
	}

	return out, nil
}

type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}

	return "hashed:" + password, nil
}

func (h *fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

func (h *fakeHasher) ValidatePasswordStrength(string) error {
	return nil
}

type fakeTokenService struct {
	issued      map[string]*service.Claims
	generateErr error
	validateErr error
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]*service.Claims)}
}

func (s *fakeTokenService) GenerateToken(identity *entity.Identity) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	token := "token-" + identity.ID.String()
	s.issued[token] = &service.Claims{
		IdentityID: identity.ID,
		Role:       identity.Role.String(),
		Admin:      identity.Role.IsAdmin(),
		Type:       "session",
	}

	return token, nil
}

func (s *fakeTokenService) ValidateToken(tokenString string) (*service.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	claims, ok := s.issued[tokenString]
	if !ok {
		return nil, errors.New("unknown token")
	}

	return claims, nil
}

func (s *fakeTokenService) SessionDuration() time.Duration {
	return 30 * 24 * time.Hour
}

type fakeWidgetAuth struct {
	user      *service.TelegramUser
	verifyErr error
}

func (s *fakeWidgetAuth) VerifyAuthData(map[string]string) (*service.TelegramUser, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}

	return s.user, nil
}

func (s *fakeWidgetAuth) GetProvider() entity.Provider {
	return entity.ProviderTelegram
}

// capturingPublisher records every published audit event.
type capturingPublisher struct {
	events     []*service.AuditEvent
	publishErr error
}

func (p *capturingPublisher) PublishAuditEvent(_ context.Context, event *service.AuditEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) Close() error {
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}

	return types
}
