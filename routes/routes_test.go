package routes

import (
	"SmartClinic/assistant"
	"SmartClinic/cache"
	"SmartClinic/config"
	"SmartClinic/metrics"
	"SmartClinic/repositories/memrepo"
	"SmartClinic/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoChatter struct{}

func (echoChatter) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", assistant.ErrEmptyMessage
	}
	return "echo: " + message, nil
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := utils.NewTokenMaker([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	repos := memrepo.New()
	cfg := &config.AppConfig{
		Environment:       "test",
		AllowedOrigins:    []string{"http://localhost:3000"},
		RequestsPerSecond: 1000,
		Burst:             1000,
		MetricsToken:      "metrics-token",
	}
	return SetupRoutes(cfg, Dependencies{
		Users:        repos.Users,
		Directory:    repos.Directory,
		Appointments: repos.Appointments,
		Contacts:     repos.Contacts,
		Ambulances:   repos.Ambulances,
		Store:        cache.NewMemory(),
		Locker:       memrepo.NewLocker(),
		Collector:    metrics.NewCollector("test"),
		Tokens:       tokens,
		Assistant:    echoChatter{},
		Log:          zap.NewNop(),
	})
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Token   string            `json:"token"`
	Errors  map[string]string `json:"errors"`
	raw     []byte
}

func (e envelope) field(t *testing.T, key string, v interface{}) {
	t.Helper()
	var all map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(e.raw, &all))
	require.Contains(t, all, key)
	require.NoError(t, json.Unmarshal(all[key], v))
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)

	env := envelope{raw: w.Body.Bytes()}
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(env.raw, &env))
	}
	return w.Code, env
}

func (c *client) login(email, role string) *client {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/auth/login", gin.H{"email": email, "password": "pw1", "role": role})
	require.Equal(c.t, http.StatusOK, code, env.Message)
	require.NotEmpty(c.t, env.Token)
	return &client{t: c.t, h: c.h, token: env.Token}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	srv := newServer(t)
	anon := &client{t: t, h: srv}

	code, _ := anon.do(http.MethodPost, "/auth/register", gin.H{
		"email": "admin@x.com", "password": "pw1", "name": "Ada", "role": "hospital_admin",
		"hospital": gin.H{"name": "City Clinic", "address": "1 Main St", "contact": "+1 555 0100"},
	})
	require.Equal(t, http.StatusCreated, code)
	code, _ = anon.do(http.MethodPost, "/auth/register", gin.H{"email": "pat@x.com", "password": "pw1", "name": "Pat", "role": "patient"})
	require.Equal(t, http.StatusCreated, code)

	code, env := anon.do(http.MethodPost, "/auth/register", gin.H{"email": "PAT@x.com", "password": "pw1", "name": "Pat", "role": "patient"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)

	code, _ = anon.do(http.MethodPost, "/auth/login", gin.H{"email": "pat@x.com", "password": "pw1", "role": "doctor"})
	assert.Equal(t, http.StatusUnauthorized, code, "wrong login surface")

	admin := anon.login("admin@x.com", "hospital_admin")
	patient := anon.login("pat@x.com", "patient")

	code, env = admin.do(http.MethodGet, "/api/hospitals", nil)
	require.Equal(t, http.StatusOK, code)
	var hospitals []struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	env.field(t, "hospitals", &hospitals)
	require.Len(t, hospitals, 1)
	hospitalID := hospitals[0].ID

	doctorBody := gin.H{"name": "Dr Lee", "email": "doc@x.com", "password": "pw1", "specialization": "Cardiology", "consultation_fee": 100}
	code, _ = patient.do(http.MethodPost, fmt.Sprintf("/api/hospitals/%d/doctors", hospitalID), doctorBody)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = admin.do(http.MethodPost, fmt.Sprintf("/api/hospitals/%d/doctors", hospitalID), doctorBody)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var doc struct {
		ID uint `json:"id"`
	}
	env.field(t, "doctor", &doc)

	doctor := anon.login("doc@x.com", "doctor")

	at := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	code, env = patient.do(http.MethodPost, "/api/appointments", gin.H{"doctor_id": doc.ID, "appointment_time": at})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var appointment struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	env.field(t, "appointment", &appointment)
	assert.Equal(t, "pending", appointment.Status)

	code, env = patient.do(http.MethodPost, "/api/appointments", gin.H{"doctor_id": doc.ID, "appointment_time": at})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Errors, "appointment_time")

	code, _ = patient.do(http.MethodPost, fmt.Sprintf("/api/appointments/%d/approve", appointment.ID), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = doctor.do(http.MethodPost, fmt.Sprintf("/api/appointments/%d/approve", appointment.ID), nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = patient.do(http.MethodDelete, fmt.Sprintf("/api/appointments/%d", appointment.ID), nil)
	assert.Equal(t, http.StatusBadRequest, code, "approved appointments cannot be cancelled")

	code, _ = doctor.do(http.MethodPost, fmt.Sprintf("/api/appointments/%d/complete", appointment.ID), gin.H{"diagnosis": "Healthy"})
	require.Equal(t, http.StatusOK, code)

	code, env = patient.do(http.MethodGet, "/api/medical-history", nil)
	require.Equal(t, http.StatusOK, code)
	var history []struct {
		Diagnosis string `json:"diagnosis"`
	}
	env.field(t, "history", &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Healthy", history[0].Diagnosis)

	code, env = admin.do(http.MethodGet, "/api/dashboard/hospital", nil)
	require.Equal(t, http.StatusOK, code)
	var dashboard struct {
		Completed []json.RawMessage `json:"completed"`
	}
	env.field(t, "dashboard", &dashboard)
	assert.Len(t, dashboard.Completed, 1)

	code, _ = anon.do(http.MethodGet, fmt.Sprintf("/api/appointments/%d", appointment.ID), nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newServer(t)
	anon := &client{t: t, h: srv}
	code, _ := anon.do(http.MethodPost, "/auth/register", gin.H{"email": "pat@x.com", "password": "pw1", "name": "Pat", "role": "patient"})
	require.Equal(t, http.StatusCreated, code)

	patient := anon.login("pat@x.com", "patient")
	code, _ = patient.do(http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = patient.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = patient.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLoginWrongRoleSetsNoSession(t *testing.T) {
	srv := newServer(t)
	anon := &client{t: t, h: srv}
	code, _ := anon.do(http.MethodPost, "/auth/register", gin.H{"email": "pat@x.com", "password": "pw1", "name": "Pat", "role": "patient"})
	require.Equal(t, http.StatusCreated, code)

	login := func(role string) *httptest.ResponseRecorder {
		body, err := json.Marshal(gin.H{"email": "pat@x.com", "password": "pw1", "role": role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		return w
	}

	w := login("doctor")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Empty(t, env.Token)

	w = login("patient")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestPublicEndpoints(t *testing.T) {
	srv := newServer(t)
	anon := &client{t: t, h: srv}

	code, env := anon.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = anon.do(http.MethodPost, "/api/chat", gin.H{"message": "hello"})
	require.Equal(t, http.StatusOK, code)
	var reply string
	env.field(t, "response", &reply)
	assert.Equal(t, "echo: hello", reply)

	code, _ = anon.do(http.MethodPost, "/api/chat", gin.H{"message": ""})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = anon.do(http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = anon.do(http.MethodGet, "/api/doctors/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = anon.do(http.MethodGet, "/api/doctors/42", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = anon.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	metricsClient := &client{t: t, h: srv, token: "metrics-token"}
	code, _ = metricsClient.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, code)
}
