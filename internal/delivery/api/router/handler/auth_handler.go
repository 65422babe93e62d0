// Package handler contains the echo handlers for the API delivery layer.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kiosk/internal/delivery/api/response"
	"kiosk/internal/domain/entity"
	"kiosk/internal/domain/service"
	"kiosk/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	IdentityUC    usecase.IdentityUsecase
	QRCodeService service.QRCodeService
	Logger        *slog.Logger
}

// AuthHandler holds dependencies for registration and login handlers.
type AuthHandler struct {
	identityUC    usecase.IdentityUsecase
	qrcodeService service.QRCodeService
	logger        *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		identityUC:    params.IdentityUC,
		qrcodeService: params.QRCodeService,
		logger:        params.Logger,
	}
}

// RegisterRequest represents the request body for password registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
}

// LoginRequest represents the request body for password login.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse is the common payload for every successful authentication.
type AuthResponse struct {
	Identity *IdentityView `json:"identity"`
	Token    string        `json:"token"`
	IsAdmin  bool          `json:"is_admin"`
}

// IdentityView is the client-facing projection of an identity. Credential
// material never appears here.
type IdentityView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email,omitempty"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	PhotoURL    string     `json:"photo_url"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewIdentityView projects a domain identity for responses.
func NewIdentityView(identity *entity.Identity) *IdentityView {
	return &IdentityView{
		ID:          identity.ID.String(),
		Email:       identity.Email,
		Username:    identity.Username,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Role:        identity.Role.String(),
		LastLoginAt: identity.LastLoginAt,
		CreatedAt:   identity.CreatedAt,
	}
}

// Register handles password account registration.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	output, err := h.identityUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, AuthResponse{
		Identity: NewIdentityView(output.Identity),
		Token:    output.Token,
		IsAdmin:  output.IsAdmin,
	})
}

// Login handles password login by email or username.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	output, err := h.identityUC.Login(c.Request().Context(), &usecase.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, AuthResponse{
		Identity: NewIdentityView(output.Identity),
		Token:    output.Token,
		IsAdmin:  output.IsAdmin,
	})
}

// TelegramLogin handles the login-widget JSON callback. The payload is kept
// as raw key/value pairs because the signature covers exactly the fields the
// widget sent, whatever they are.
func (h *AuthHandler) TelegramLogin(c echo.Context) error {
	fields, err := decodeWidgetBody(c)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid telegram login payload")
	}

	return h.completeTelegramLogin(c, fields)
}

// TelegramCallback handles the widget's redirect variant, which carries the
// signed fields as query parameters.
func (h *AuthHandler) TelegramCallback(c echo.Context) error {
	fields := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	return h.completeTelegramLogin(c, fields)
}

func (h *AuthHandler) completeTelegramLogin(c echo.Context, fields map[string]string) error {
	output, err := h.identityUC.TelegramLogin(c.Request().Context(), &usecase.TelegramLoginInput{Fields: fields})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, AuthResponse{
		Identity: NewIdentityView(output.Identity),
		Token:    output.Token,
		IsAdmin:  output.IsAdmin,
	})
}

// LoginQR serves a PNG QR code of the Telegram login deep link.
func (h *AuthHandler) LoginQR(c echo.Context) error {
	png, err := h.qrcodeService.GenerateLoginQR()
	if err != nil {
		h.logger.Error("Failed to generate login QR code", slog.Any("error", err))

		return response.InternalServerError(c, "QR_GENERATION_FAILED", "Failed to generate QR code")
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// decodeWidgetBody flattens the JSON body into strings without disturbing
// numeric representations: the check string must see `id` and `auth_date`
// exactly as Telegram rendered them.
func decodeWidgetBody(c echo.Context) (map[string]string, error) {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		default:
			fields[key] = fmt.Sprintf("%v", v)
		}
	}

	return fields, nil
}
