package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "session"

func SetSessionCookie(c *gin.Context, token string, expiry time.Duration) {
	setCookie(c, SessionCookieName, token, int(expiry.Seconds()))
}

func ClearSessionCookie(c *gin.Context) {
	setCookie(c, SessionCookieName, "", -1)
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	secure := true
	if gin.Mode() == gin.DebugMode { // Toggle for local dev
		secure = false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}
