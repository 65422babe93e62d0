package handler

import (
	"log/slog"
	"net/http"

	"kiosk/internal/delivery/api/middleware"
	"kiosk/internal/delivery/api/response"
	"kiosk/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// IdentityHandlerParams holds dependencies for IdentityHandler, injected by Fx.
type IdentityHandlerParams struct {
	fx.In

	IdentityUC usecase.IdentityUsecase
	Logger     *slog.Logger
}

// IdentityHandler serves the authenticated-identity endpoints.
type IdentityHandler struct {
	identityUC usecase.IdentityUsecase
	logger     *slog.Logger
}

// NewIdentityHandler is the constructor for IdentityHandler.
func NewIdentityHandler(params IdentityHandlerParams) *IdentityHandler {
	return &IdentityHandler{
		identityUC: params.IdentityUC,
		logger:     params.Logger,
	}
}

// MeResponse is the token verification payload.
type MeResponse struct {
	Identity *IdentityView `json:"identity"`
	IsAdmin  bool          `json:"is_admin"`
}

// Me returns the identity behind the presented token. The auth middleware
// already re-read the account from the store, so the role here is current.
func (h *IdentityHandler) Me(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	return response.Success(c, http.StatusOK, MeResponse{
		Identity: NewIdentityView(identity),
		IsAdmin:  identity.Role.IsAdmin(),
	})
}

// AdminGetIdentity looks up any identity by id. Admin-gated by the router.
func (h *IdentityHandler) AdminGetIdentity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid identity ID")
	}

	identity, err := h.identityUC.GetIdentity(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, NewIdentityView(identity))
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
