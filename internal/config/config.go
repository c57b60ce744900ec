package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration
type Config struct {
	Env             string
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	ContentPath     string
	SessionDuration time.Duration
	WordSearchTTL   time.Duration
	CSRFSecret      string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	AppleClientID        string
	AppleClientSecret    string
	OAuthRedirectBaseURL string

	SESRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	AMQPURL      string
	AMQPExchange string

	// HintSuppressedUnits lists "subject/unit" pairs whose term questions
	// carry no middle-letter hint. "none" clears the list.
	HintSuppressedUnits []string
}

// Load reads an optional .env file, an optional educross.yaml and then
// environment variables, falling back to the defaults below.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("educross")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("app_env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_path", "./educross.db")
	v.SetDefault("migrations_path", "./migrations")
	v.SetDefault("content_path", "./content")
	v.SetDefault("session_duration", "24h")
	v.SetDefault("wordsearch_ttl", "2h")
	v.SetDefault("oauth_redirect_base_url", "http://localhost:8080")
	v.SetDefault("ses_region", "us-east-1")
	v.SetDefault("ses_from_name", "EduCross")
	v.SetDefault("app_base_url", "http://localhost:8080")
	v.SetDefault("amqp_exchange", "educross.events")
	v.SetDefault("hint_suppressed_units", "chemistry-1/chem1-unit1")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	cfg := &Config{
		Env:                  v.GetString("app_env"),
		ServerPort:           v.GetString("port"),
		DatabaseType:         strings.ToLower(v.GetString("db_type")),
		DatabasePath:         v.GetString("db_path"),
		DatabaseURL:          v.GetString("database_url"),
		MigrationsPath:       v.GetString("migrations_path"),
		ContentPath:          v.GetString("content_path"),
		SessionDuration:      v.GetDuration("session_duration"),
		WordSearchTTL:        v.GetDuration("wordsearch_ttl"),
		CSRFSecret:           v.GetString("csrf_secret"),
		GoogleClientID:       v.GetString("google_client_id"),
		GoogleClientSecret:   v.GetString("google_client_secret"),
		FacebookClientID:     v.GetString("facebook_client_id"),
		FacebookClientSecret: v.GetString("facebook_client_secret"),
		AppleClientID:        v.GetString("apple_client_id"),
		AppleClientSecret:    v.GetString("apple_client_secret"),
		OAuthRedirectBaseURL: v.GetString("oauth_redirect_base_url"),
		SESRegion:            v.GetString("ses_region"),
		SESFromEmail:         v.GetString("ses_from_email"),
		SESFromName:          v.GetString("ses_from_name"),
		AppBaseURL:           v.GetString("app_base_url"),
		AMQPURL:              v.GetString("amqp_url"),
		AMQPExchange:         v.GetString("amqp_exchange"),
		HintSuppressedUnits:  unitList(v.GetString("hint_suppressed_units")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the database settings and durations
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3":
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: DB_PATH is required for sqlite", ErrInvalidConfig)
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for %s", ErrInvalidConfig, c.DatabaseType)
		}
	default:
		return fmt.Errorf("%w: unsupported DB_TYPE %q", ErrInvalidConfig, c.DatabaseType)
	}

	if c.SessionDuration <= 0 {
		return fmt.Errorf("%w: SESSION_DURATION must be positive", ErrInvalidConfig)
	}
	if c.WordSearchTTL <= 0 {
		return fmt.Errorf("%w: WORDSEARCH_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// unitList splits a comma list. The result is non-nil so an empty value
// stays distinct from an unset one.
func unitList(s string) []string {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return []string{}
	}
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
