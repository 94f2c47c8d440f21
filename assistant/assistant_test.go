package assistant

import (
	"SmartClinic/config"
	"SmartClinic/models"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticStats struct {
	stats *models.SystemStats
	err   error
}

func (s staticStats) Stats(ctx context.Context) (*models.SystemStats, error) {
	return s.stats, s.err
}

var sampleStats = &models.SystemStats{
	Hospitals:       2,
	Doctors:         5,
	HospitalNames:   []string{"City Clinic", "Harbor Hospital"},
	Specializations: []string{"Cardiology", "Neurology"},
}

func geminiServer(t *testing.T, handler http.HandlerFunc) config.AssistantConfig {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return config.AssistantConfig{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL, Timeout: 2 * time.Second}
}

func TestChat_EmptyMessage(t *testing.T) {
	a := NewWithGenerator(nil, staticStats{stats: sampleStats}, nil, zap.NewNop())
	_, err := a.Chat(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChat_Rules(t *testing.T) {
	a := New(config.AssistantConfig{}, staticStats{stats: sampleStats}, nil, zap.NewNop())

	tests := []struct {
		message string
		want    string
	}{
		{"I have chest pain", "medical emergency"},
		{"How do I book an appointment?", "pending until the doctor approves"},
		{"Which hospitals do you have?", "City Clinic, Harbor Hospital"},
		{"find me a specialist", "Cardiology, Neurology"},
		{"I have a FEVER", "fluids"},
		{"hi there", "SmartClinic assistant"},
		{"what is the meaning of life", "2 hospitals and 5 doctors"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply, err := a.Chat(context.Background(), tt.message)
			require.NoError(t, err)
			assert.Contains(t, reply, tt.want)
		})
	}
}

func TestChat_StatsFailureStillAnswers(t *testing.T) {
	a := NewWithGenerator(nil, staticStats{err: errors.New("db down")}, nil, zap.NewNop())
	reply, err := a.Chat(context.Background(), "hospitals?")
	require.NoError(t, err)
	assert.Equal(t, "No hospitals are registered yet.", reply)
}

func TestGemini_Success(t *testing.T) {
	var prompt string
	cfg := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompt = req.Contents[0].Parts[0].Text

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  See a cardiologist.  "}]}}]}`))
	})

	a := New(cfg, staticStats{stats: sampleStats}, nil, zap.NewNop())
	reply, err := a.Chat(context.Background(), "my heart races")
	require.NoError(t, err)
	assert.Equal(t, "See a cardiologist.", reply)
	assert.Contains(t, prompt, "- Hospitals: 2")
	assert.Contains(t, prompt, "- Harbor Hospital")
	assert.True(t, strings.HasSuffix(prompt, "User message: my heart races"))
}

func TestGemini_RateLimitedGivesBusyMessage(t *testing.T) {
	cfg := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	})

	a := New(cfg, staticStats{stats: sampleStats}, nil, zap.NewNop())
	reply, err := a.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, busyMessage, reply)
}

func TestGemini_FailuresFallBackThenTripBreaker(t *testing.T) {
	var calls int32
	cfg := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	})

	a := New(cfg, staticStats{stats: sampleStats}, nil, zap.NewNop())
	for i := 0; i < 5; i++ {
		reply, err := a.Chat(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, fallbackMessage, reply)
	}

	reply, err := a.Chat(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, busyMessage, reply, "open breaker short-circuits")
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestGemini_EmptyCandidates(t *testing.T) {
	cfg := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := NewGeminiClient(cfg, zap.NewNop()).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("é", maxMessageLength)
	cut := truncate(long, maxMessageLength)
	assert.True(t, utf8.ValidString(cut))
	assert.Len(t, cut, maxMessageLength)

	odd := "a" + strings.Repeat("é", maxMessageLength)
	cut = truncate(odd, maxMessageLength)
	assert.True(t, utf8.ValidString(cut))
	assert.Len(t, cut, maxMessageLength-1)
}
