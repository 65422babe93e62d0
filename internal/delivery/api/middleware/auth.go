package middleware

import (
	"strings"

	"kiosk/internal/domain/entity"
	domainerrors "kiosk/internal/domain/errors"
	"kiosk/internal/usecase"

	"github.com/labstack/echo/v4"
)

// contextKeyIdentity is where the authenticated identity is stored on echo.Context.
const contextKeyIdentity = "identity"

// AuthMiddleware guards routes behind a valid session token. Token claims are
// only used to locate the account; the identity placed on the context is
// re-read from the store on every request, so a role change takes effect
// immediately regardless of what old tokens say.
type AuthMiddleware struct {
	identityUC usecase.IdentityUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(identityUC usecase.IdentityUsecase) *AuthMiddleware {
	return &AuthMiddleware{identityUC: identityUC}
}

// Authenticate validates the bearer token and loads the current identity.
// Failures surface as domain errors and reach the client through the
// centralized error handler, keeping the 401 payloads uniform.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrMissingToken
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			return domainerrors.ErrMissingToken.WrapMessage("authorization header is not a bearer token")
		}

		identity, err := m.identityUC.Authenticate(c.Request().Context(), tokenString)
		if err != nil {
			return err
		}

		c.Set(contextKeyIdentity, identity)

		return next(c)
	}
}

// RequireAdmin rejects requests whose freshly loaded identity is not an
// administrator. It must be used after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return domainerrors.ErrMissingToken
		}
		if !identity.Role.IsAdmin() {
			return domainerrors.ErrForbidden.WrapMessage("administrator role required")
		}

		return next(c)
	}
}

// GetIdentity returns the authenticated identity set by Authenticate.
func GetIdentity(c echo.Context) (*entity.Identity, bool) {
	identity, ok := c.Get(contextKeyIdentity).(*entity.Identity)

	return identity, ok
}
