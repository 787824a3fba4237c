package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CasdoorConfig struct {
	Endpoint     string `validate:"omitempty,url"`
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
	RedirectURL  string `validate:"omitempty,url"`
}

// Enabled reports whether enough settings are present to offer SSO login.
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != "" && c.ClientSecret != ""
}

type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge time.Duration `validate:"gt=0"`
}

type Config struct {
	Port        string     `validate:"required,numeric"`
	Environment string     `validate:"required,oneof=development test staging production"`
	LogLevel    slog.Level `validate:"-"`

	BackendURL     string        `validate:"required,url"`
	BackendTimeout time.Duration `validate:"gt=0"`

	RedisURL     string        `validate:"omitempty,url"`
	NameCacheTTL time.Duration `validate:"gte=0"`

	KafkaBrokers []string
	KafkaTopic   string `validate:"required"`

	// Paths that bypass the route guard entirely.
	GuardSkipPaths []string

	Cookie  CookieConfig
	Casdoor CasdoorConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("backend_url", "http://localhost:8080")
	v.SetDefault("backend_timeout", 15*time.Second)
	v.SetDefault("name_cache_ttl", 10*time.Minute)
	v.SetDefault("kafka_topic", "exam-portal.events")
	v.SetDefault("guard_skip_paths", "/health,/static/")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cookie_max_age", 7*24*time.Hour)
}

// LoadConfig reads the optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		Environment:    v.GetString("environment"),
		LogLevel:       level,
		BackendURL:     strings.TrimRight(v.GetString("backend_url"), "/"),
		BackendTimeout: v.GetDuration("backend_timeout"),
		RedisURL:       v.GetString("redis_url"),
		NameCacheTTL:   v.GetDuration("name_cache_ttl"),
		KafkaBrokers:   splitList(v.GetString("kafka_brokers")),
		KafkaTopic:     v.GetString("kafka_topic"),
		GuardSkipPaths: splitList(v.GetString("guard_skip_paths")),
		Cookie: CookieConfig{
			Secure: v.GetBool("cookie_secure"),
			Domain: v.GetString("cookie_domain"),
			MaxAge: v.GetDuration("cookie_max_age"),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     v.GetString("casdoor_endpoint"),
			ClientID:     v.GetString("casdoor_client_id"),
			ClientSecret: v.GetString("casdoor_client_secret"),
			Cert:         v.GetString("casdoor_cert"),
			Organization: v.GetString("casdoor_organization"),
			Application:  v.GetString("casdoor_application"),
			RedirectURL:  v.GetString("casdoor_redirect_url"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
