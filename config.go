package jobboard

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Settings is the runtime configuration, read from the environment
type Settings struct {
	Port               string        `json:"port"`
	Environment        string        `json:"environment"`
	SigningKey         string        `json:"signing_key"`
	Issuer             string        `json:"issuer"`
	TokenExpiration    time.Duration `json:"token_expiration"`
	ContextKey         string        `json:"context_key"`
	CookieName         string        `json:"cookie_name"`
	CookieDomain       string        `json:"cookie_domain"`
	CookieSameSite     string        `json:"cookie_same_site"`
	DBDriver           string        `json:"db_driver"`
	DatabaseURL        string        `json:"database_url"`
	RedisURL           string        `json:"redis_url"`
	StatusChannel      string        `json:"status_channel"`
	EnrichConcurrency  int           `json:"enrich_concurrency"`
	CORSOrigins        string        `json:"cors_origins"`
	MetricsLogInterval time.Duration `json:"metrics_log_interval"`
	Debug              bool          `json:"debug"`
}

var _ Config = (*Settings)(nil)

// DefaultSettings returns the settings used when a key is not set
func DefaultSettings() *Settings {
	return &Settings{
		Port:              "5000",
		Environment:       EnvDevelopment,
		Issuer:            "go-jobboard",
		TokenExpiration:   DefaultTokenExpiration,
		ContextKey:        "user",
		CookieName:        "token",
		DBDriver:          "sqlite",
		DatabaseURL:       "file:jobboard.db?cache=shared",
		StatusChannel:     "EVENT_APPLICATION_STATUS",
		EnrichConcurrency: 8,
		CORSOrigins:       "http://localhost:5173",
	}
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig(files ...string) (*Settings, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load(files...)
	return SettingsFromEnv(os.Getenv)
}

// SettingsFromEnv builds settings from a lookup function
func SettingsFromEnv(getenv func(string) string) (*Settings, error) {
	s := DefaultSettings()

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	str("PORT", &s.Port)
	str("APP_ENV", &s.Environment)
	str("JWT_SECRET", &s.SigningKey)
	str("JWT_ISSUER", &s.Issuer)
	str("CONTEXT_KEY", &s.ContextKey)
	str("COOKIE_NAME", &s.CookieName)
	str("COOKIE_DOMAIN", &s.CookieDomain)
	str("COOKIE_SAME_SITE", &s.CookieSameSite)
	if v := normalizeSameSite(s.CookieSameSite); v != "" {
		s.CookieSameSite = v
	}
	str("DB_DRIVER", &s.DBDriver)
	str("DATABASE_URL", &s.DatabaseURL)
	str("REDIS_URL", &s.RedisURL)
	str("STATUS_CHANNEL", &s.StatusChannel)
	str("CORS_ORIGINS", &s.CORSOrigins)

	var err error
	if v := getenv("TOKEN_EXPIRATION"); v != "" {
		if s.TokenExpiration, err = time.ParseDuration(v); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid TOKEN_EXPIRATION")
		}
	}
	if v := getenv("METRICS_LOG_INTERVAL"); v != "" {
		if s.MetricsLogInterval, err = time.ParseDuration(v); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid METRICS_LOG_INTERVAL")
		}
	}
	if v := getenv("ENRICH_CONCURRENCY"); v != "" {
		if s.EnrichConcurrency, err = strconv.Atoi(v); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid ENRICH_CONCURRENCY")
		}
	}
	if v := getenv("DEBUG"); v != "" {
		if s.Debug, err = strconv.ParseBool(v); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid DEBUG")
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings
func (s *Settings) Validate() error {
	if err := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(s,
			validation.Field(&s.Port, validation.Required, is.Port),
			validation.Field(&s.Environment, validation.In(EnvDevelopment, EnvProduction)),
			validation.Field(&s.SigningKey, validation.Required, validation.Length(16, 0)),
			validation.Field(&s.TokenExpiration, validation.Required, validation.Min(time.Second)),
			validation.Field(&s.CookieName, validation.Required),
			validation.Field(&s.CookieSameSite, validation.In("Strict", "Lax", "None")),
			validation.Field(&s.DBDriver, validation.Required, validation.In("sqlite", "postgres")),
			validation.Field(&s.DatabaseURL, validation.Required),
			validation.Field(&s.EnrichConcurrency, validation.Required, validation.Min(1)),
		)
	}, "invalid configuration"); err != nil {
		return err
	}
	return nil
}

// Redacted returns a copy safe to print
func (s Settings) Redacted() Settings {
	if s.SigningKey != "" {
		s.SigningKey = "[REDACTED]"
	}
	if s.RedisURL != "" {
		s.RedisURL = "[REDACTED]"
	}
	return s
}

// IsProduction reports whether the service crosses a trust boundary
func (s *Settings) IsProduction() bool { return s.Environment == EnvProduction }

func (s *Settings) GetSigningKey() string             { return s.SigningKey }
func (s *Settings) GetIssuer() string                 { return s.Issuer }
func (s *Settings) GetTokenExpiration() time.Duration { return s.TokenExpiration }
func (s *Settings) GetContextKey() string             { return s.ContextKey }
func (s *Settings) GetCookieName() string             { return s.CookieName }
func (s *Settings) GetCookieDomain() string           { return s.CookieDomain }
func (s *Settings) GetCookieSameSite() string         { return s.CookieSameSite }
func (s *Settings) GetEnvironment() string            { return s.Environment }
func (s *Settings) GetEnrichConcurrency() int         { return s.EnrichConcurrency }

// GetCORSOrigins returns the comma separated origin list
func (s *Settings) GetCORSOrigins() string { return s.CORSOrigins }
