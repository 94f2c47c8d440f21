package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Environment  string
	ServerAddr   string
	DBURL        string
	RedisAddress string
	SymmetricKey string
	SessionTTL   time.Duration
	// Timezone is the IANA zone doctor availability windows are written in.
	Timezone string

	LogLevel  string
	LogFormat string

	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
	MetricsToken      string

	Redis     RedisConfig
	Assistant AssistantConfig
	Tracing   TracingConfig
}

// RedisConfig holds the Redis pool settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// AssistantConfig configures the chat assistant collaborator. An empty APIKey
// selects the rule-based responder.
type AssistantConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

// GetSymmetricKey returns the PASETO key as bytes.
func (c *AppConfig) GetSymmetricKey() []byte {
	return []byte(c.SymmetricKey)
}

// IsDevelopment reports whether the app runs with ENV=development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Location returns the clinic time zone, UTC when unset or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present.
func Load() (*AppConfig, error) {
	cfg := load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTooling loads the same settings for the offline tooling, which only
// needs the database.
func LoadTooling() (*AppConfig, error) {
	cfg := load()
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.DBURL, validation.Required.Error("missing DB_URL environment variable")),
		validation.Field(&cfg.LogFormat, validation.In("json", "console")),
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() *AppConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	cfg := &AppConfig{
		Environment:  getEnv("ENV", "production"),
		ServerAddr:   getEnv("SERVER_ADDR", ":8930"),
		DBURL:        os.Getenv("DB_URL"),
		RedisAddress: redisURL,
		SymmetricKey: os.Getenv("SYMMETRIC_KEY"),
		SessionTTL:   getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		Timezone:     getEnv("CLINIC_TIMEZONE", "UTC"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AllowedOrigins:    getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 15),
		Burst:             getEnvAsInt("RATE_LIMIT_BURST", 30),
		MetricsToken:      os.Getenv("METRICS_TOKEN"),

		Redis: RedisConfig{
			URL:          redisURL,
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 30*time.Second),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 10*time.Second),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
		},
		Assistant: AssistantConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Timeout: getEnvAsDuration("ASSISTANT_TIMEOUT", 30*time.Second),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "smartclinic"),
			Endpoint:    getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvAsFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}
	return cfg
}

// Validate checks the required settings.
func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBURL, validation.Required.Error("missing DB_URL environment variable")),
		validation.Field(&c.RedisAddress, validation.Required.Error("missing REDIS_URL environment variable")),
		validation.Field(&c.SymmetricKey,
			validation.Required.Error("missing SYMMETRIC_KEY environment variable"),
			validation.Length(32, 32).Error("SYMMETRIC_KEY must be 32 bytes long")),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.Timezone, validation.By(validTimezone)),
		validation.Field(&c.LogFormat, validation.In("json", "console")),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.1)),
		validation.Field(&c.Burst, validation.Min(1)),
	)
}

func validTimezone(value interface{}) error {
	name, _ := value.(string)
	if _, err := time.LoadLocation(name); err != nil {
		return errors.New("CLINIC_TIMEZONE must be an IANA time zone name")
	}
	return nil
}

func getEnv(name, defaultValue string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: Invalid float value for %s, using default: %v", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(name); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		log.Printf("Warning: Invalid duration value for %s, using default: %s", name, defaultValue.String())
	}
	return defaultValue
}

func getEnvAsSlice(name string, defaultValue []string) []string {
	value, exists := os.LookupEnv(name)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
