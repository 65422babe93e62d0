package impl

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"kiosk/config"
	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/domain/service"
	"kiosk/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityServiceFixtures holds all test dependencies for identity service tests.
type identityServiceFixtures struct {
	service      usecase.IdentityUsecase
	factory      *fakeRepoFactory
	hasher       *fakeHasher
	tokenService *fakeTokenService
	widgetAuth   *fakeWidgetAuth
	publisher    *capturingPublisher
}

func createTestIdentityService(t *testing.T, adminIDs ...int64) identityServiceFixtures {
	t.Helper()

	factory := newFakeRepoFactory()
	hasher := &fakeHasher{}
	tokenService := newFakeTokenService()
	widgetAuth := &fakeWidgetAuth{}
	publisher := &capturingPublisher{}

	svc := NewIdentityService(IdentityServiceParams{
		TxManager:      &fakeTxManager{factory: factory},
		IdentityRepo:   factory.identityRepo,
		CredentialRepo: factory.credentialRepo,
		Hasher:         hasher,
		TokenService:   tokenService,
		WidgetAuth:     widgetAuth,
		Publisher:      publisher,
		Config: &config.Config{
			Telegram: &config.TelegramConfig{AdminIDs: adminIDs},
		},
		Logger: newDiscardLogger(),
	})

	return identityServiceFixtures{
		service:      svc,
		factory:      factory,
		hasher:       hasher,
		tokenService: tokenService,
		widgetAuth:   widgetAuth,
		publisher:    publisher,
	}
}

func registerInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Email:    "reader@example.com",
		Username: "reader",
		Password: "Password123",
		FullName: "Test Reader",
	}
}

func TestIdentityService_Register_Success(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	out, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	assert.Equal(t, "token-"+out.Identity.ID.String(), out.Token)
	assert.Equal(t, entity.RoleUser, out.Identity.Role)
	assert.False(t, out.IsAdmin)

	require.NotNil(t, out.Identity.Entitlement)
	assert.Equal(t, entity.TierFree, out.Identity.Entitlement.Tier)
	assert.Zero(t, out.Identity.Entitlement.ArticlesRead)

	credentials, err := fixtures.factory.credentialRepo.ListByIdentity(ctx, out.Identity.ID)
	require.NoError(t, err)
	require.Len(t, credentials, 1)
	assert.Equal(t, entity.ProviderPassword, credentials[0].Provider)
	assert.Equal(t, "reader@example.com", credentials[0].ProviderUserID)
	assert.Equal(t, "hashed:Password123", credentials[0].PasswordHash)

	assert.Equal(t, []string{entity.AuditIdentityRegistered}, fixtures.publisher.eventTypes())
}

func TestIdentityService_Register_DuplicateEmail(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	_, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Username = "another"
	_, err = fixtures.service.Register(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
}

func TestIdentityService_Register_DuplicateUsername(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	_, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Email = "another@example.com"
	_, err = fixtures.service.Register(ctx, input)
	assert.ErrorIs(t, err, domainerrors.ErrUsernameAlreadyExists)
}

func TestIdentityService_Login_ByEmailAndUsername(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	_, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	byEmail, err := fixtures.service.Login(ctx, &usecase.LoginInput{
		Identifier: "reader@example.com",
		Password:   "Password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)
	require.NotNil(t, byEmail.Identity.LastLoginAt)

	byUsername, err := fixtures.service.Login(ctx, &usecase.LoginInput{
		Identifier: "reader",
		Password:   "Password123",
	})
	require.NoError(t, err)
	assert.Equal(t, byEmail.Identity.ID, byUsername.Identity.ID)
}

func TestIdentityService_Login_WrongPassword(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	_, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = fixtures.service.Login(ctx, &usecase.LoginInput{
		Identifier: "reader@example.com",
		Password:   "NotThePassword1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestIdentityService_Login_UnknownIdentifier(t *testing.T) {
	fixtures := createTestIdentityService(t)

	_, err := fixtures.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "nobody@example.com",
		Password:   "Password123",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestIdentityService_Login_WidgetOnlyAccount(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	fixtures.widgetAuth.user = &service.TelegramUser{
		ID:        42,
		FirstName: "Ada",
		Username:  "ada",
		AuthDate:  time.Now(),
	}
	_, err := fixtures.service.TelegramLogin(ctx, &usecase.TelegramLoginInput{Fields: map[string]string{}})
	require.NoError(t, err)

	// A widget-created account has no password credential to check against.
	_, err = fixtures.service.Login(ctx, &usecase.LoginInput{
		Identifier: "ada",
		Password:   "anything",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestIdentityService_TelegramLogin_CreatesAccount(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	fixtures.widgetAuth.user = &service.TelegramUser{
		ID:        777,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		AuthDate:  time.Now(),
	}

	out, err := fixtures.service.TelegramLogin(ctx, &usecase.TelegramLoginInput{Fields: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "ada", out.Identity.Username)
	assert.Equal(t, "Ada Lovelace", out.Identity.DisplayName)
	assert.Equal(t, entity.RoleUser, out.Identity.Role)
	assert.False(t, out.IsAdmin)
	assert.NotEmpty(t, out.Identity.PhotoURL)

	credential, err := fixtures.factory.credentialRepo.FindByProvider(ctx, entity.ProviderTelegram, "777")
	require.NoError(t, err)
	assert.Equal(t, out.Identity.ID, credential.IdentityID)
	assert.Empty(t, credential.PasswordHash)
}

func TestIdentityService_TelegramLogin_AllowlistedAdmin(t *testing.T) {
	fixtures := createTestIdentityService(t, 777)
	ctx := context.Background()

	fixtures.widgetAuth.user = &service.TelegramUser{
		ID:        777,
		FirstName: "Ada",
		Username:  "ada",
		AuthDate:  time.Now(),
	}

	out, err := fixtures.service.TelegramLogin(ctx, &usecase.TelegramLoginInput{Fields: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.Identity.Role)
	assert.True(t, out.IsAdmin)
}

func TestIdentityService_TelegramLogin_ExistingAccountKeepsRole(t *testing.T) {
	// The allowlist includes an id whose account already exists as a regular
	// user. A later login must not promote it.
	fixtures := createTestIdentityService(t, 777)
	ctx := context.Background()

	existing := &entity.Identity{
		Username:    "ada",
		DisplayName: "Ada",
		Role:        entity.RoleUser,
		Entitlement: defaultEntitlement(),
	}
	require.NoError(t, fixtures.factory.identityRepo.Create(ctx, existing))
	require.NoError(t, fixtures.factory.credentialRepo.Create(ctx, &entity.Credential{
		IdentityID:     existing.ID,
		Provider:       entity.ProviderTelegram,
		ProviderUserID: strconv.FormatInt(777, 10),
	}))

	fixtures.widgetAuth.user = &service.TelegramUser{
		ID:        777,
		FirstName: "Ada",
		Username:  "ada",
		AuthDate:  time.Now(),
	}

	out, err := fixtures.service.TelegramLogin(ctx, &usecase.TelegramLoginInput{Fields: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, out.Identity.ID)
	assert.Equal(t, entity.RoleUser, out.Identity.Role)
	assert.False(t, out.IsAdmin)
	require.NotNil(t, out.Identity.LastLoginAt)
}

func TestIdentityService_TelegramLogin_UsernameCollisionRetries(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	taken := &entity.Identity{
		Username:    "ada",
		DisplayName: "Another Ada",
		Role:        entity.RoleUser,
		Entitlement: defaultEntitlement(),
	}
	require.NoError(t, fixtures.factory.identityRepo.Create(ctx, taken))

	fixtures.widgetAuth.user = &service.TelegramUser{
		ID:        888,
		FirstName: "Ada",
		Username:  "ada",
		AuthDate:  time.Now(),
	}

	out, err := fixtures.service.TelegramLogin(ctx, &usecase.TelegramLoginInput{Fields: map[string]string{}})
	require.NoError(t, err)
	assert.NotEqual(t, taken.ID, out.Identity.ID)
	assert.True(t, strings.HasPrefix(out.Identity.Username, "ada_"))
	assert.NotEqual(t, "ada", out.Identity.Username)
}

func TestIdentityService_TelegramLogin_RejectedPayload(t *testing.T) {
	fixtures := createTestIdentityService(t)
	fixtures.widgetAuth.verifyErr = domainerrors.ErrInvalidSignature

	_, err := fixtures.service.TelegramLogin(context.Background(), &usecase.TelegramLoginInput{Fields: map[string]string{}})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
	assert.Empty(t, fixtures.publisher.events)
}

func TestIdentityService_Authenticate_MissingToken(t *testing.T) {
	fixtures := createTestIdentityService(t)

	_, err := fixtures.service.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrMissingToken)
}

func TestIdentityService_Authenticate_InvalidToken(t *testing.T) {
	fixtures := createTestIdentityService(t)
	fixtures.tokenService.validateErr = errors.New("signature mismatch")

	_, err := fixtures.service.Authenticate(context.Background(), "tampered")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
}

func TestIdentityService_Authenticate_SubjectGone(t *testing.T) {
	fixtures := createTestIdentityService(t)
	fixtures.tokenService.issued["orphan"] = &service.Claims{IdentityID: uuid.New()}

	_, err := fixtures.service.Authenticate(context.Background(), "orphan")
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestIdentityService_Authenticate_RereadsStore(t *testing.T) {
	fixtures := createTestIdentityService(t)
	ctx := context.Background()

	out, err := fixtures.service.Register(ctx, registerInput())
	require.NoError(t, err)

	// Promote the account after the token was issued. The stale claims in the
	// token must not win over the stored role.
	out.Identity.Role = entity.RoleAdmin
	require.NoError(t, fixtures.factory.identityRepo.Update(ctx, out.Identity))

	identity, err := fixtures.service.Authenticate(ctx, out.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, identity.Role)
}

func TestIdentityService_GetIdentity_NotFound(t *testing.T) {
	fixtures := createTestIdentityService(t)

	_, err := fixtures.service.GetIdentity(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}
