package middlewares

import (
	"SmartClinic/cache"
	"SmartClinic/models"
	"SmartClinic/utils"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func init() {
	gin.SetMode(gin.TestMode)
}

func newSessionAuth(t *testing.T, ttl time.Duration) (*SessionAuth, *utils.TokenMaker) {
	t.Helper()
	tokens, err := utils.NewTokenMaker(testKey, ttl)
	require.NoError(t, err)
	return NewSessionAuth(tokens, cache.NewMemory(), zap.NewNop()), tokens
}

// sessionRouter serves /whoami, which echoes the resolved role or "anonymous".
func sessionRouter(auth *SessionAuth, guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(auth.Authenticate())
	handlers := append(guards, func(c *gin.Context) {
		actor := ActorFromContext(c)
		if actor.UserID == 0 {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(actor.Role))
	})
	r.GET("/whoami", handlers...)
	return r
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	auth, tokens := newSessionAuth(t, time.Hour)
	token, _, err := tokens.GenerateToken(models.Actor{UserID: 7, Role: models.RoleDoctor, Name: "Dr Lee"})
	require.NoError(t, err)
	r := sessionRouter(auth)

	assert.Equal(t, "anonymous", get(r, "/whoami").Body.String())
	assert.Equal(t, "doctor", get(r, "/whoami", "Authorization", "Bearer "+token).Body.String())
	assert.Equal(t, "doctor", get(r, "/whoami", "Cookie", utils.SessionCookieName+"="+token).Body.String())
	assert.Equal(t, "anonymous", get(r, "/whoami", "Authorization", "Bearer garbage").Body.String())
}

func TestAuthenticate_ExpiredClearsCookie(t *testing.T) {
	auth, tokens := newSessionAuth(t, time.Millisecond)
	token, _, err := tokens.GenerateToken(models.Actor{UserID: 7, Role: models.RolePatient})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	w := get(sessionRouter(auth), "/whoami", "Cookie", utils.SessionCookieName+"="+token)
	assert.Equal(t, "anonymous", w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), utils.SessionCookieName+"=;")
}

func TestRevoke(t *testing.T) {
	auth, tokens := newSessionAuth(t, time.Hour)
	token, claims, err := tokens.GenerateToken(models.Actor{UserID: 7, Role: models.RolePatient})
	require.NoError(t, err)
	r := sessionRouter(auth, RequireAuthenticated())

	assert.Equal(t, http.StatusOK, get(r, "/whoami", "Authorization", "Bearer "+token).Code)

	require.NoError(t, auth.Revoke(context.Background(), claims))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami", "Authorization", "Bearer "+token).Code)

	assert.NoError(t, auth.Revoke(context.Background(), nil))
}

func TestRequireRole(t *testing.T) {
	auth, tokens := newSessionAuth(t, time.Hour)
	r := sessionRouter(auth, RequireRole(models.RoleDoctor, models.RoleHospitalAdmin))

	patient, _, err := tokens.GenerateToken(models.Actor{UserID: 1, Role: models.RolePatient})
	require.NoError(t, err)
	admin, _, err := tokens.GenerateToken(models.Actor{UserID: 2, Role: models.RoleHospitalAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/whoami").Code)
	w := get(r, "/whoami", "Authorization", "Bearer "+patient)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Equal(t, http.StatusOK, get(r, "/whoami", "Authorization", "Bearer "+admin).Code)
}

func TestValidateBearerToken(t *testing.T) {
	guarded := gin.New()
	guarded.GET("/metrics", ValidateBearerToken("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, get(guarded, "/metrics").Code)
	assert.Equal(t, http.StatusUnauthorized, get(guarded, "/metrics", "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, get(guarded, "/metrics", "Authorization", "s3cret").Code)
	assert.Equal(t, http.StatusOK, get(guarded, "/metrics", "Authorization", "Bearer s3cret").Code)

	open := gin.New()
	open.GET("/metrics", ValidateBearerToken(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, get(open, "/metrics").Code)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	assert.Equal(t, http.StatusOK, get(r, "/").Code)
	w := get(r, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")

	// Limits are per client address.
	assert.Equal(t, http.StatusOK, get(r, "/", "X-Forwarded-For", "203.0.113.9").Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	data := &rateLimiterData{
		clients: map[string]*clientLimiter{},
		config:  RateLimiterConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute},
	}
	start := time.Now()
	data.lastSweep = start
	assert.True(t, data.allow("a", start))
	assert.True(t, data.allow("b", start.Add(90*time.Second)))
	assert.NotContains(t, data.clients, "a")
	assert.Contains(t, data.clients, "b")
}

func TestSecurityHeadersAndCors(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(), Cors([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { RespondJSON(c, http.StatusOK, "ok", gin.H{"n": 1}) })

	w := get(r, "/", "Origin", "https://app.example.com")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.JSONEq(t, `{"success":true,"message":"ok","n":1}`, w.Body.String())

	w = get(r, "/", "Origin", "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondJSON_ErrorEnvelope(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { RespondJSON(c, http.StatusNotFound, "missing", nil) })
	w := get(r, "/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"success":false`))
}
