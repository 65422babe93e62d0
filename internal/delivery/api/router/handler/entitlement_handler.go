package handler

import (
	"log/slog"
	"net/http"
	"time"

	"kiosk/internal/delivery/api/middleware"
	"kiosk/internal/delivery/api/response"
	"kiosk/internal/domain/entity"
	"kiosk/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// EntitlementHandlerParams holds dependencies for EntitlementHandler, injected by Fx.
type EntitlementHandlerParams struct {
	fx.In

	EntitlementUC usecase.EntitlementUsecase
	Logger        *slog.Logger
}

// EntitlementHandler serves the tier, quota and saved-article endpoints.
type EntitlementHandler struct {
	entitlementUC usecase.EntitlementUsecase
	logger        *slog.Logger
}

// NewEntitlementHandler is the constructor for EntitlementHandler.
func NewEntitlementHandler(params EntitlementHandlerParams) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementUC: params.EntitlementUC,
		logger:        params.Logger,
	}
}

// UpgradeRequest represents the request body for a tier upgrade.
type UpgradeRequest struct {
	Tier      string `json:"tier" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
}

// SaveArticleRequest represents the request body for saving an article.
type SaveArticleRequest struct {
	ArticleID string `json:"article_id" validate:"required"`
	Title     string `json:"title"`
}

// UsageResponse is the usage snapshot payload.
type UsageResponse struct {
	Tier          string            `json:"tier"`
	Limits        entity.TierLimits `json:"limits"`
	ArticlesRead  int               `json:"articles_read"`
	SavedCount    int64             `json:"saved_count"`
	TierExpiresAt *time.Time        `json:"tier_expires_at,omitempty"`
	UsageResetAt  time.Time         `json:"usage_reset_at"`
}

// ReadResponse reports usage state after a metered read.
type ReadResponse struct {
	Tier         string `json:"tier"`
	ArticlesRead int    `json:"articles_read"`
	Limit        int    `json:"limit"`
}

// UpgradeResponse reports the purchased tier and its validity window.
type UpgradeResponse struct {
	Tier          string            `json:"tier"`
	TierExpiresAt time.Time         `json:"tier_expires_at"`
	Limits        entity.TierLimits `json:"limits"`
}

// GetUsage returns the caller's effective tier and today's counters.
func (h *EntitlementHandler) GetUsage(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	usage, err := h.entitlementUC.GetUsage(c.Request().Context(), identity.ID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, UsageResponse{
		Tier:          usage.Tier.String(),
		Limits:        usage.Limits,
		ArticlesRead:  usage.ArticlesRead,
		SavedCount:    usage.SavedCount,
		TierExpiresAt: usage.TierExpiresAt,
		UsageResetAt:  usage.UsageResetAt,
	})
}

// ReadArticle consumes one metered read for the caller.
func (h *EntitlementHandler) ReadArticle(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	articleID := c.Param("articleID")
	if articleID == "" {
		return response.BadRequest(c, "INVALID_ID", "Missing article ID")
	}

	read, err := h.entitlementUC.ReadArticle(c.Request().Context(), identity.ID, articleID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, ReadResponse{
		Tier:         read.Tier.String(),
		ArticlesRead: read.ArticlesRead,
		Limit:        read.Limit,
	})
}

// Upgrade purchases a paid tier for the caller.
func (h *EntitlementHandler) Upgrade(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	var req UpgradeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid upgrade input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	upgrade, err := h.entitlementUC.Upgrade(c.Request().Context(), &usecase.UpgradeInput{
		IdentityID: identity.ID,
		Tier:       entity.Tier(req.Tier),
		PaymentID:  req.PaymentID,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, UpgradeResponse{
		Tier:          upgrade.Tier.String(),
		TierExpiresAt: upgrade.TierExpiresAt,
		Limits:        upgrade.Limits,
	})
}

// ListTiers returns the public tier catalog.
func (h *EntitlementHandler) ListTiers(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.entitlementUC.ListTiers(c.Request().Context()))
}

// SaveArticle adds an article to the caller's saved list.
func (h *EntitlementHandler) SaveArticle(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	var req SaveArticleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid saved-article input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	saved, err := h.entitlementUC.SaveArticle(c.Request().Context(), &usecase.SaveArticleInput{
		IdentityID: identity.ID,
		ArticleID:  req.ArticleID,
		Title:      req.Title,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, saved)
}

// ListSavedArticles returns the caller's saved list, newest first.
func (h *EntitlementHandler) ListSavedArticles(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	saved, err := h.entitlementUC.ListSavedArticles(c.Request().Context(), identity.ID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, saved)
}

// RemoveSavedArticle deletes one entry from the caller's saved list.
func (h *EntitlementHandler) RemoveSavedArticle(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
	}

	articleID := c.Param("articleID")
	if articleID == "" {
		return response.BadRequest(c, "INVALID_ID", "Missing article ID")
	}

	if err := h.entitlementUC.RemoveSavedArticle(c.Request().Context(), identity.ID, articleID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "saved article removed"})
}
