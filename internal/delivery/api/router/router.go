// Package router contains routing and server setup for the API delivery.
package router

import (
	"kiosk/config"
	"kiosk/internal/delivery/api/middleware"
	"kiosk/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	IdentityHandler    *handler.IdentityHandler
	EntitlementHandler *handler.EntitlementHandler
	AuthMiddleware     *middleware.AuthMiddleware
	Config             *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	identityHandler    *handler.IdentityHandler
	entitlementHandler *handler.EntitlementHandler
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		identityHandler:    params.IdentityHandler,
		entitlementHandler: params.EntitlementHandler,
		authMiddleware:     params.AuthMiddleware,
		config:             params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public tier catalog
	e.GET("/tiers", r.entitlementHandler.ListTiers)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/telegram", r.authHandler.TelegramLogin)
		authGroup.GET("/telegram/callback", r.authHandler.TelegramCallback)
		authGroup.GET("/telegram/qr", r.authHandler.LoginQR)
	}

	// Identity routes that require authentication
	identityGroup := e.Group("/identity")
	identityGroup.Use(r.authMiddleware.Authenticate)
	{
		identityGroup.GET("/me", r.identityHandler.Me)
		identityGroup.GET("/usage", r.entitlementHandler.GetUsage)
		identityGroup.POST("/upgrade", r.entitlementHandler.Upgrade)
		identityGroup.GET("/saved", r.entitlementHandler.ListSavedArticles)
		identityGroup.POST("/saved", r.entitlementHandler.SaveArticle)
		identityGroup.DELETE("/saved/:articleID", r.entitlementHandler.RemoveSavedArticle)
	}

	// Metered article reads
	articlesGroup := e.Group("/articles")
	articlesGroup.Use(r.authMiddleware.Authenticate)
	{
		articlesGroup.POST("/:articleID/read", r.entitlementHandler.ReadArticle)
	}

	// Admin routes: authentication first, then the role check against the
	// freshly loaded identity.
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireAdmin)
	{
		adminGroup.GET("/identities/:id", r.identityHandler.AdminGetIdentity)
	}
}
