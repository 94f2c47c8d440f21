// Package assistant answers chat messages, either through a hosted language
// model or, without an API key, from a keyword table. It only reads
// aggregate counts and never writes.
package assistant

import (
	"SmartClinic/config"
	"SmartClinic/metrics"
	"SmartClinic/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	maxMessageLength = 2000

	fallbackMessage = "I'm having trouble processing your request right now. Please try asking in a " +
		"different way, or contact our support team for assistance."
	busyMessage = "Our assistant is experiencing high demand right now. Please try again in a few minutes."
)

var ErrEmptyMessage = errors.New("message is required")

// StatsSource supplies the read-only counts used as prompt context.
type StatsSource interface {
	Stats(ctx context.Context) (*models.SystemStats, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Assistant struct {
	stats     StatsSource
	generator Generator
	metrics   *metrics.Collector
	log       *zap.Logger
}

// New wires the Gemini client when an API key is configured.
func New(cfg config.AssistantConfig, stats StatsSource, collector *metrics.Collector, log *zap.Logger) *Assistant {
	var generator Generator
	if cfg.APIKey != "" {
		generator = NewGeminiClient(cfg, log)
	}
	return NewWithGenerator(generator, stats, collector, log)
}

// NewWithGenerator uses generator directly; a nil generator means rule-based
// answers only.
func NewWithGenerator(generator Generator, stats StatsSource, collector *metrics.Collector, log *zap.Logger) *Assistant {
	return &Assistant{stats: stats, generator: generator, metrics: collector, log: log}
}

// Chat returns the reply for message. The only error is ErrEmptyMessage;
// collaborator failures become a friendly fallback text.
func (a *Assistant) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	message = truncate(message, maxMessageLength)

	stats, err := a.stats.Stats(ctx)
	if err != nil {
		a.log.Warn("assistant could not load stats", zap.Error(err))
		stats = &models.SystemStats{}
	}

	if a.generator == nil {
		a.metrics.ObserveAssistant("rules")
		return RuleResponse(message, stats), nil
	}

	reply, err := a.generator.Generate(ctx, BuildPrompt(stats, message))
	switch {
	case err == nil:
		a.metrics.ObserveAssistant("ok")
		return reply, nil
	case errors.Is(err, ErrRateLimited):
		a.metrics.ObserveAssistant("rate_limited")
		a.log.Warn("assistant rate limited")
		return busyMessage, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		a.metrics.ObserveAssistant("breaker_open")
		return busyMessage, nil
	default:
		a.metrics.ObserveAssistant("error")
		a.log.Warn("assistant request failed", zap.Error(err))
		return fallbackMessage, nil
	}
}

// BuildPrompt puts the live counts and usage guidance ahead of the user's
// message.
func BuildPrompt(stats *models.SystemStats, message string) string {
	var sb strings.Builder
	sb.WriteString("You are SmartClinic AI, the assistant of an online doctor appointment platform.\n\n")
	sb.WriteString("CURRENT DATA:\n")
	fmt.Fprintf(&sb, "- Hospitals: %d\n", stats.Hospitals)
	fmt.Fprintf(&sb, "- Doctors: %d\n", stats.Doctors)
	fmt.Fprintf(&sb, "- Patients: %d\n", stats.Patients)
	fmt.Fprintf(&sb, "- Appointments: %d (pending %d, completed %d)\n",
		stats.Appointments, stats.PendingAppointments, stats.CompletedAppointments)

	sb.WriteString("\nHOSPITALS:\n")
	if len(stats.HospitalNames) == 0 {
		sb.WriteString("No hospitals registered yet\n")
	}
	for _, name := range stats.HospitalNames {
		fmt.Fprintf(&sb, "- %s\n", name)
	}

	sb.WriteString("\nSPECIALIZATIONS: ")
	if len(stats.Specializations) == 0 {
		sb.WriteString("none yet\n")
	} else {
		sb.WriteString(strings.Join(stats.Specializations, ", ") + "\n")
	}

	sb.WriteString(`
USING THE PLATFORM:
- Patients, doctors and hospital admins each log in separately.
- Patients book from Hospitals, then a doctor, then a future time. Bookings stay pending until the doctor approves.
- Completed consultations appear under Medical History.
- Ambulances are requested from the Emergency page.

GUIDELINES:
- Be warm and use plain language.
- Suggest possible causes and the right specialist, never a diagnosis.
- When mentioning medication, add: "` + disclaimer + `"
- For emergency symptoms, tell the user to call emergency services first.

User message: `)
	sb.WriteString(message)
	return sb.String()
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
