// ABOUTME: Application configuration loaded from .env files and the environment
// ABOUTME: Uses viper for defaults and env binding, validated before use
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SCHOOLCRM"

// Config holds all application configuration.
type Config struct {
	DBPath     string `mapstructure:"db_path" validate:"required"`
	ListenAddr string `mapstructure:"listen_addr" validate:"required"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json logfmt"`

	// TokenStore picks where the calendar credential lives.
	TokenStore string `mapstructure:"token_store" validate:"oneof=file charm"`
	TokenPath  string `mapstructure:"token_path"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	OAuthRedirect      string `mapstructure:"oauth_redirect" validate:"omitempty,url"`

	// StaffLead is the default owner recorded on new partners.
	StaffLead string `mapstructure:"staff_lead"`

	// Calendar endpoint rate limit, requests per second per client.
	CalendarRate  float64 `mapstructure:"calendar_rate" validate:"gt=0"`
	CalendarBurst int     `mapstructure:"calendar_burst" validate:"gte=1"`
}

// DefaultDBPath returns the XDG-compliant database location.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "schoolcrm", "crm.db")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("db_path", DefaultDBPath())
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("token_store", "file")
	v.SetDefault("token_path", "")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("oauth_redirect", "")
	v.SetDefault("staff_lead", "")
	v.SetDefault("calendar_rate", 1.0)
	v.SetDefault("calendar_burst", 5)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// Google credentials keep their conventional unprefixed names.
	_ = v.BindEnv("google_client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("google_client_secret", "GOOGLE_CLIENT_SECRET")
	return v
}

// Load reads .env (if present) and the environment.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, path := range dotenvFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := newViper().Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.TokenStore = strings.ToLower(cfg.TokenStore)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	return v
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config %s=%v (%s)", strings.ToUpper(envPrefix+"_"+fe.Field()), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CalendarConfigured reports whether OAuth client credentials are present.
func (c *Config) CalendarConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
