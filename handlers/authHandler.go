package handlers

import (
	"SmartClinic/middlewares"
	"SmartClinic/models"
	"SmartClinic/services"
	"SmartClinic/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	UserService services.UserService
	tokens      *utils.TokenMaker
	sessions    *middlewares.SessionAuth
	log         *zap.Logger
}

func NewAuthHandler(userService services.UserService, tokens *utils.TokenMaker, sessions *middlewares.SessionAuth, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		UserService: userService,
		tokens:      tokens,
		sessions:    sessions,
		log:         log,
	}
}

// Register handles new user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.UserService.Register(c.Request.Context(), reg)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusCreated, "Registration successful", gin.H{"user": user})
}

// Login authenticates the user and starts a session
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.UserService.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// A fresh login replaces whatever session the client held.
	if previous := middlewares.ClaimsFromContext(c); previous != nil {
		if err := h.sessions.Revoke(c.Request.Context(), previous); err != nil {
			h.log.Warn("failed to revoke previous session", zap.Error(err))
		}
	}

	token, claims, err := h.tokens.GenerateToken(models.Actor{UserID: user.ID, Role: user.Role, Name: user.Name})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SetSessionCookie(c, token, h.tokens.TTL())

	middlewares.RespondJSON(c, http.StatusOK, "Welcome back, "+user.Name, gin.H{
		"token":      token,
		"expires_at": claims.Expiry,
		"user":       user,
	})
}

// Logout revokes the session token and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := middlewares.ClaimsFromContext(c); claims != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
			respondError(c, h.log, err)
			return
		}
	}
	utils.ClearSessionCookie(c)
	middlewares.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Me returns the caller's identity and role profile
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.UserService.Profile(c.Request.Context(), middlewares.ActorFromContext(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "ok", gin.H{"user": user})
}

// UpdateMe edits the caller's own profile
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.UserService.UpdateProfile(c.Request.Context(), middlewares.ActorFromContext(c), update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	middlewares.RespondJSON(c, http.StatusOK, "Profile updated", gin.H{"user": user})
}
