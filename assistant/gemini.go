package assistant

import (
	"SmartClinic/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	ErrRateLimited   = errors.New("language model quota exceeded")
	ErrEmptyResponse = errors.New("language model returned no text")
)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiClient calls the generateContent endpoint through a circuit breaker.
type GeminiClient struct {
	httpClient *resty.Client
	breaker    *gobreaker.CircuitBreaker[string]
	model      string
	log        *zap.Logger
}

func NewGeminiClient(cfg config.AssistantConfig, log *zap.Logger) *GeminiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &GeminiClient{httpClient: client, breaker: breaker, model: cfg.Model, log: log}
}

// Generate sends prompt and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	var result generateResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetBody(generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}).
		SetResult(&result).
		SetError(&failure).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("failed to call language model: %w", err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests || failure.Error.Status == "RESOURCE_EXHAUSTED" {
		return "", ErrRateLimited
	}
	if resp.IsError() {
		return "", fmt.Errorf("language model error: %s (status: %d)", failure.Error.Message, resp.StatusCode())
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		for _, p := range candidate.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
