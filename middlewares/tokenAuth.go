package middlewares

import (
	"SmartClinic/cache"
	"SmartClinic/models"
	"SmartClinic/utils"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Keys used to store the session on the gin context.
const (
	actorKey  = "actor"
	claimsKey = "session_claims"
)

const revokedKeyPrefix = "session:revoked:"

// SessionAuth resolves the caller from the session token and tracks revoked
// tokens in the shared cache.
type SessionAuth struct {
	tokens  *utils.TokenMaker
	revoked cache.Store
	log     *zap.Logger
}

func NewSessionAuth(tokens *utils.TokenMaker, revoked cache.Store, log *zap.Logger) *SessionAuth {
	return &SessionAuth{tokens: tokens, revoked: revoked, log: log}
}

// Authenticate attaches the actor when a valid session is presented. It never
// aborts: anonymous requests pass through without an actor.
func (a *SessionAuth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := a.tokens.ValidateToken(token)
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				utils.ClearSessionCookie(c)
			}
			c.Next()
			return
		}

		revoked, err := a.isRevoked(c.Request.Context(), claims.TokenID)
		if err != nil {
			a.log.Warn("revocation lookup failed", zap.Error(err))
		}
		if revoked {
			c.Next()
			return
		}

		c.Set(actorKey, claims.Actor())
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Revoke invalidates the session until its natural expiry.
func (a *SessionAuth) Revoke(ctx context.Context, claims *utils.SessionClaims) error {
	if claims == nil || claims.TokenID == "" {
		return nil
	}
	ttl := time.Until(claims.Expiry)
	if ttl <= 0 {
		return nil
	}
	return a.revoked.Set(ctx, revokedKeyPrefix+claims.TokenID, "1", ttl)
}

func (a *SessionAuth) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	val, err := a.revoked.Get(ctx, revokedKeyPrefix+tokenID)
	if err != nil {
		return false, err
	}
	return val != "", nil
}

// sessionToken prefers the Authorization header over the cookie.
func sessionToken(c *gin.Context) string {
	if token, ok := bearerToken(c); ok {
		return token
	}
	token, err := c.Cookie(utils.SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

// RequireAuthenticated rejects requests without a session.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFromContext(c).UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole restricts access to the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor.UserID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden: insufficient privileges"})
	}
}

// ActorFromContext returns the session actor, or the zero Actor when anonymous.
func ActorFromContext(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

// ClaimsFromContext returns the session claims, or nil when anonymous.
func ClaimsFromContext(c *gin.Context) *utils.SessionClaims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*utils.SessionClaims); ok {
			return claims
		}
	}
	return nil
}
