package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Email    EmailConfig
	Sweep    SweepConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. AllowedEmailDomains is the
// institutional allow-list checked at registration.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AllowedEmailDomains   []string
}

// StorageConfig points at the blob store. The service key lives server-side
// only; clients receive public object URLs.
type StorageConfig struct {
	BaseURL           string
	ServiceKey        string
	UploadTimeoutSecs int
}

// EmailConfig holds transactional email provider settings. The provider key
// lives server-side only.
type EmailConfig struct {
	BrevoAPIKey    string
	BrevoBaseURL   string
	SenderName     string
	SenderEmail    string
	PortalName     string
	SendTimeoutSec int
}

// SweepConfig controls the notification retry sweep.
type SweepConfig struct {
	IntervalSeconds int
	BatchLimit      int
	LockTTLSeconds  int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "exam-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AllowedEmailDomains:   getEnvAsList("AUTH_ALLOWED_EMAIL_DOMAINS", "srmist.edu.in,srmist.in"),
		},
		Storage: StorageConfig{
			BaseURL:           getEnv("STORAGE_BASE_URL", ""),
			ServiceKey:        os.Getenv("STORAGE_SERVICE_KEY"),
			UploadTimeoutSecs: getEnvAsInt("STORAGE_UPLOAD_TIMEOUT_SECONDS", 30),
		},
		Email: EmailConfig{
			BrevoAPIKey:    os.Getenv("BREVO_API_KEY"),
			BrevoBaseURL:   getEnv("BREVO_BASE_URL", "https://api.brevo.com"),
			SenderName:     getEnv("EMAIL_SENDER_NAME", "Examination Control Team"),
			SenderEmail:    getEnv("EMAIL_SENDER_ADDRESS", "examcontrol@example.edu"),
			PortalName:     getEnv("EMAIL_PORTAL_NAME", "Examination Control Portal"),
			SendTimeoutSec: getEnvAsInt("EMAIL_SEND_TIMEOUT_SECONDS", 15),
		},
		Sweep: SweepConfig{
			IntervalSeconds: getEnvAsInt("NOTIFY_SWEEP_INTERVAL_SECONDS", 60),
			BatchLimit:      getEnvAsInt("NOTIFY_SWEEP_BATCH_LIMIT", 10),
			LockTTLSeconds:  getEnvAsInt("NOTIFY_SWEEP_LOCK_TTL_SECONDS", 55),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Interval returns the sweep period.
func (s SweepConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// LockTTL returns the cross-instance sweep lock lifetime.
func (s SweepConfig) LockTTL() time.Duration {
	if s.LockTTLSeconds <= 0 {
		return 55 * time.Second
	}
	return time.Duration(s.LockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
