package controllers

import (
	"SmartClinic/handlers"
	"SmartClinic/middlewares"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Handler *handlers.AuthHandler
}

// NewAuthController creates a new AuthController with the given AuthHandler
func NewAuthController(authHandler *handlers.AuthHandler) *AuthController {
	return &AuthController{
		Handler: authHandler,
	}
}

// RegisterRoutes initializes all authentication routes directly on the router
func (ac *AuthController) RegisterRoutes(router *gin.Engine) {
	// Public routes: No authentication required
	router.POST("/auth/register", ac.Handler.Register)
	router.POST("/auth/login", ac.Handler.Login)

	// Protected routes: Requires a valid session
	authGroup := router.Group("/auth").Use(middlewares.RequireAuthenticated())
	{
		authGroup.POST("/logout", ac.Handler.Logout)
		authGroup.GET("/me", ac.Handler.Me)
		authGroup.PUT("/me", ac.Handler.UpdateMe)
	}
}
