// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"kiosk/config"
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

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager      repository.TransactionManager
	identityRepo   repository.IdentityRepository
	credentialRepo repository.CredentialRepository
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	widgetAuth     service.WidgetAuthService
	publisher      service.EventPublisher
	adminIDs       map[int64]struct{}
	logger         *slog.Logger
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	IdentityRepo   repository.IdentityRepository
	CredentialRepo repository.CredentialRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	WidgetAuth     service.WidgetAuthService
	Publisher      service.EventPublisher
	Config         *config.Config
	Logger         *slog.Logger
}

// NewIdentityService is the constructor for identityService. The admin
// allowlist is copied out of configuration once here; login payloads can
// never influence it.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	adminIDs := make(map[int64]struct{})
	if params.Config != nil && params.Config.Telegram != nil {
		for _, id := range params.Config.Telegram.AdminIDs {
			adminIDs[id] = struct{}{}
		}
	}

	return &identityService{
		txManager:      params.TxManager,
		identityRepo:   params.IdentityRepo,
		credentialRepo: params.CredentialRepo,
		hasher:         params.Hasher,
		tokenService:   params.TokenService,
		widgetAuth:     params.WidgetAuth,
		publisher:      params.Publisher,
		adminIDs:       adminIDs,
		logger:         params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete password registration process.
func (srv *identityService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email), slog.String("username", input.Username))

	// Hash outside the transaction; bcrypt at cost 12 is CPU-bound.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Warn("Password rejected during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	var registered *entity.Identity
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		credentialRepo := repoFactory.CredentialRepo()

		// Email first, then username; the conflict message names the field.
		if _, findErr := identityRepo.FindByEmail(ctx, input.Email); findErr == nil {
			return domainerrors.ErrEmailAlreadyExists
		} else if !errors.Is(findErr, repository.ErrIdentityNotFound) {
			return errors.Wrap(findErr, "failed to check email availability")
		}

		if _, findErr := identityRepo.FindByUsername(ctx, input.Username); findErr == nil {
			return domainerrors.ErrUsernameAlreadyExists
		} else if !errors.Is(findErr, repository.ErrIdentityNotFound) {
			return errors.Wrap(findErr, "failed to check username availability")
		}

		newIdentity := buildPasswordIdentity(input)
		if createErr := identityRepo.Create(ctx, newIdentity); createErr != nil {
			return errors.Wrap(createErr, "failed to create identity during registration")
		}

		newCredential := &entity.Credential{
			IdentityID:     newIdentity.ID,
			Provider:       entity.ProviderPassword,
			ProviderUserID: input.Email,
			PasswordHash:   hashedPassword,
		}
		if createErr := credentialRepo.Create(ctx, newCredential); createErr != nil {
			return errors.Wrap(createErr, "failed to create credential during registration")
		}

		registered = newIdentity

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	token, err := srv.tokenService.GenerateToken(registered)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token after registration")
	}

	srv.publishAuditEvent(ctx, entity.AuditIdentityRegistered, registered.ID, map[string]any{
		"provider": entity.ProviderPassword.String(),
		"username": registered.Username,
	})
	srv.log(ctx).Debug("Registration completed", slog.Any("identityID", registered.ID))

	return &usecase.AuthOutput{Identity: registered, Token: token, IsAdmin: false}, nil
}

// Login orchestrates a password login. Unknown identifiers and wrong
// passwords collapse into the same error so callers cannot enumerate accounts.
func (srv *identityService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting password login", slog.String("identifier", input.Identifier))

	identity, err := srv.findByIdentifier(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("identifier", input.Identifier))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to look up login identity")
	}

	credential, err := srv.passwordCredential(ctx, identity.ID)
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("identifier", input.Identifier), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	// bcrypt comparison is constant-time; run it outside any transaction.
	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("identifier", input.Identifier))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	now := time.Now()
	if err := srv.identityRepo.TouchLastLogin(ctx, identity.ID, now); err != nil {
		return nil, errors.Wrap(err, "failed to record login time")
	}
	identity.LastLoginAt = &now

	token, err := srv.tokenService.GenerateToken(identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token after login")
	}

	srv.publishAuditEvent(ctx, entity.AuditIdentityLoggedIn, identity.ID, map[string]any{
		"provider": entity.ProviderPassword.String(),
	})
	srv.log(ctx).Debug("Password login completed", slog.Any("identityID", identity.ID))

	return &usecase.AuthOutput{Identity: identity, Token: token, IsAdmin: identity.Role.IsAdmin()}, nil
}

// TelegramLogin verifies the widget payload, then resolves or creates the
// linked account.
func (srv *identityService) TelegramLogin(ctx context.Context, input *usecase.TelegramLoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting telegram widget login")

	telegramUser, err := srv.widgetAuth.VerifyAuthData(input.Fields)
	if err != nil {
		srv.log(ctx).Warn("Telegram login payload rejected", slog.Any("error", err))

		return nil, err
	}

	identity, err := srv.resolveTelegramIdentity(ctx, telegramUser)
	if err != nil {
		return nil, err
	}

	token, err := srv.tokenService.GenerateToken(identity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue session token after telegram login")
	}

	srv.publishAuditEvent(ctx, entity.AuditTelegramLogin, identity.ID, map[string]any{
		"provider":    entity.ProviderTelegram.String(),
		"telegram_id": telegramUser.ID,
	})

	return &usecase.AuthOutput{Identity: identity, Token: token, IsAdmin: identity.Role.IsAdmin()}, nil
}

// Authenticate validates a session token and re-reads the current identity.
func (srv *identityService) Authenticate(ctx context.Context, tokenString string) (*entity.Identity, error) {
	if tokenString == "" {
		return nil, domainerrors.ErrMissingToken
	}

	claims, err := srv.tokenService.ValidateToken(tokenString)
	if err != nil {
		srv.log(ctx).Debug("Session token rejected", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "session token validation failed")
	}

	identity, err := srv.identityRepo.FindByID(ctx, claims.IdentityID)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "token subject no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load identity for session token")
	}

	return identity, nil
}

// GetIdentity loads an identity by id for administrative lookup.
func (srv *identityService) GetIdentity(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	identity, err := srv.identityRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to load identity")
	}

	return identity, nil
}

// findByIdentifier resolves a login identifier against email first, then username.
func (srv *identityService) findByIdentifier(ctx context.Context, identifier string) (*entity.Identity, error) {
	identity, err := srv.identityRepo.FindByEmail(ctx, identifier)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, repository.ErrIdentityNotFound) {
		return nil, err
	}

	return srv.identityRepo.FindByUsername(ctx, identifier)
}

// passwordCredential returns the account's password credential, if it has one.
// Widget-only accounts do not, and can never log in with a password.
func (srv *identityService) passwordCredential(ctx context.Context, identityID uuid.UUID) (*entity.Credential, error) {
	credentials, err := srv.credentialRepo.ListByIdentity(ctx, identityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list credentials")
	}

	for _, credential := range credentials {
		if credential.Provider == entity.ProviderPassword {
			return credential, nil
		}
	}

	return nil, repository.ErrCredentialNotFound
}

// resolveTelegramIdentity finds the account linked to the Telegram id or
// creates it. Existing accounts only get their login time stamped; the role
// is never touched after creation.
func (srv *identityService) resolveTelegramIdentity(ctx context.Context, telegramUser *service.TelegramUser) (*entity.Identity, error) {
	providerUserID := strconv.FormatInt(telegramUser.ID, 10)

	var resolved *entity.Identity
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		credentialRepo := repoFactory.CredentialRepo()

		credential, findErr := credentialRepo.FindByProvider(ctx, entity.ProviderTelegram, providerUserID)
		if findErr != nil && !errors.Is(findErr, repository.ErrCredentialNotFound) {
			return errors.Wrap(findErr, "failed to find telegram credential")
		}

		if errors.Is(findErr, repository.ErrCredentialNotFound) {
			created, createErr := srv.createTelegramIdentity(ctx, identityRepo, credentialRepo, telegramUser, providerUserID)
			if createErr != nil {
				return createErr
			}
			resolved = created

			return nil
		}

		existing, loadErr := identityRepo.FindByID(ctx, credential.IdentityID)
		if loadErr != nil {
			return errors.Wrap(loadErr, "failed to load identity for telegram credential")
		}

		now := time.Now()
		if touchErr := identityRepo.TouchLastLogin(ctx, existing.ID, now); touchErr != nil {
			return errors.Wrap(touchErr, "failed to record telegram login time")
		}
		existing.LastLoginAt = &now
		resolved = existing

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Telegram identity resolution failed", slog.Int64("telegram_id", telegramUser.ID), slog.Any("error", err))

		return nil, err
	}

	return resolved, nil
}

// createTelegramIdentity creates a fresh account for a first-time widget
// login. The admin allowlist is consulted exactly once, here.
func (srv *identityService) createTelegramIdentity(
	ctx context.Context,
	identityRepo repository.IdentityRepository,
	credentialRepo repository.CredentialRepository,
	telegramUser *service.TelegramUser,
	providerUserID string,
) (*entity.Identity, error) {
	role := entity.RoleUser
	if _, allowed := srv.adminIDs[telegramUser.ID]; allowed {
		role = entity.RoleAdmin
		srv.log(ctx).Info("Creating allowlisted admin account", slog.Int64("telegram_id", telegramUser.ID))
	}

	newIdentity := buildTelegramIdentity(telegramUser, role)

	if err := identityRepo.Create(ctx, newIdentity); err != nil {
		if !errors.Is(err, domainerrors.ErrUsernameAlreadyExists) {
			return nil, errors.Wrap(err, "failed to create telegram identity")
		}

		// Someone already holds this handle locally; retry once with a
		// random suffix rather than failing the login.
		newIdentity.Username = newIdentity.Username + "_" + uuid.NewString()[:8]
		if retryErr := identityRepo.Create(ctx, newIdentity); retryErr != nil {
			return nil, errors.Wrap(retryErr, "failed to create telegram identity with suffixed username")
		}
	}

	newCredential := &entity.Credential{
		IdentityID:     newIdentity.ID,
		Provider:       entity.ProviderTelegram,
		ProviderUserID: providerUserID,
	}
	if err := credentialRepo.Create(ctx, newCredential); err != nil {
		return nil, errors.Wrap(err, "failed to create telegram credential")
	}

	return newIdentity, nil
}

// publishAuditEvent sends an audit event on a best-effort basis. A publish
// failure must never fail the login or registration it describes.
func (srv *identityService) publishAuditEvent(ctx context.Context, eventType string, identityID uuid.UUID, detail map[string]any) {
	event := &service.AuditEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		Type:       eventType,
		IdentityID: identityID.String(),
		OccurredAt: time.Now(),
		Detail:     detail,
	}

	if err := srv.publisher.PublishAuditEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish audit event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}

// buildPasswordIdentity assembles a new password account with default
// free-tier entitlement state.
func buildPasswordIdentity(input *usecase.RegisterInput) *entity.Identity {
	return &entity.Identity{
		Email:       input.Email,
		Username:    input.Username,
		DisplayName: input.FullName,
		PhotoURL:    placeholderAvatarURL(input.FullName),
		Role:        entity.RoleUser,
		Entitlement: defaultEntitlement(),
	}
}

// buildTelegramIdentity assembles a new widget-created account. The username
// falls back to a deterministic handle and the avatar to a placeholder when
// the payload omits them.
func buildTelegramIdentity(telegramUser *service.TelegramUser, role entity.Role) *entity.Identity {
	username := telegramUser.Username
	if username == "" {
		username = "user_" + strconv.FormatInt(telegramUser.ID, 10)
	}

	displayName := telegramUser.FirstName
	if telegramUser.LastName != "" {
		displayName += " " + telegramUser.LastName
	}

	photoURL := telegramUser.PhotoURL
	if photoURL == "" {
		photoURL = placeholderAvatarURL(displayName)
	}

	return &entity.Identity{
		Username:    username,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		Role:        role,
		Entitlement: defaultEntitlement(),
	}
}

// defaultEntitlement is the free-tier state every new account starts with.
func defaultEntitlement() *entity.Entitlement {
	return &entity.Entitlement{
		Tier:         entity.TierFree,
		ArticlesRead: 0,
		UsageResetAt: time.Now().UTC(),
	}
}

// placeholderAvatarURL generates a deterministic avatar for accounts without
// a provider photo.
func placeholderAvatarURL(displayName string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(displayName)
}
