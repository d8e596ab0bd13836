// Package config holds operator-level configuration for the assistant
// gateway. Everything is resolved once at startup into an immutable Config
// that is passed into constructors; business logic never reads the process
// environment directly, which keeps the pipeline deterministic under test.
//
// Each key maps to an env var with the TERI_ prefix (e.g. "model" →
// TERI_MODEL) and to a YAML field in teri.config.yaml.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyGatewayURL         = "gateway_url"
	KeyGatewayAPIKey      = "gateway_api_key"
	KeyModel              = "model"
	KeyFallbackModel      = "fallback_model"
	KeyTimeoutMS          = "timeout_ms"
	KeyFallbackTimeoutMS  = "fallback_timeout_ms"
	KeyMaxHistory         = "max_history"
	KeyMaxTokens          = "max_tokens"
	KeyTemperature        = "temperature"
	KeyLoggingEnabled     = "logging_enabled"
	KeyTelemetryURL       = "telemetry_url"
	KeyTelemetrySecret    = "telemetry_secret"
	KeyDataDir            = "data_dir"
	KeyOpsBookingURL      = "ops_booking_url"
	KeyOpsOrdersURL       = "ops_orders_url"
	KeyOpsLeaguesURL      = "ops_leagues_url"
	KeyWordPressURL       = "wordpress_url"
	KeyAdminAPIKeys       = "admin_api_keys"
	KeyRateLimitRPM       = "rate_limit_rpm"
	KeyRedactPatternsFile = "redact_patterns_file"
	KeyPort               = "port"
)

// Defaults match the tunables the production handler shipped with.
const (
	DefaultGatewayURL        = "https://ai-gateway.vercel.sh/v1"
	DefaultModel             = "grok-4"
	DefaultFallbackModel     = "grok-4.1-fast-non-reasoning"
	DefaultTimeoutMS         = 8000
	DefaultFallbackTimeoutMS = 5500
	DefaultMaxHistory        = 10
	DefaultMaxTokens         = 320
	DefaultTemperature       = 0.3
	DefaultOpsBookingURL     = "https://book.dewclawarchery.com"
	DefaultOpsOrdersURL      = "https://orders.dewclawarchery.com"
	DefaultOpsLeaguesURL     = "https://leagues.dewclawarchery.com"
	DefaultWordPressURL      = "https://www.dewclawarchery.com"
	DefaultRateLimitRPM      = 60
	DefaultPort              = 8080
)

// Config is the resolved configuration for a gateway process.
type Config struct {
	GatewayURL    string
	GatewayAPIKey string

	Model           string
	FallbackModel   string
	Timeout         time.Duration
	FallbackTimeout time.Duration
	MaxHistory      int
	MaxTokens       int
	Temperature     float64

	LoggingEnabled  bool
	TelemetryURL    string
	TelemetrySecret string
	DataDir         string

	OpsBookingURL string
	OpsOrdersURL  string
	OpsLeaguesURL string
	WordPressURL  string

	AdminAPIKeys       []string
	RateLimitRPM       int
	RedactPatternsFile string
	Port               int
}

// EventsDBPath returns the path to the telemetry SQLite database, or ""
// when no data directory is configured.
func (c *Config) EventsDBPath() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "events.db")
}

func init() {
	viper.SetEnvPrefix("TERI")
	viper.AutomaticEnv()
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeyGatewayURL, DefaultGatewayURL)
	viper.SetDefault(KeyModel, DefaultModel)
	viper.SetDefault(KeyFallbackModel, DefaultFallbackModel)
	viper.SetDefault(KeyTimeoutMS, DefaultTimeoutMS)
	viper.SetDefault(KeyFallbackTimeoutMS, DefaultFallbackTimeoutMS)
	viper.SetDefault(KeyMaxHistory, DefaultMaxHistory)
	viper.SetDefault(KeyMaxTokens, DefaultMaxTokens)
	viper.SetDefault(KeyTemperature, DefaultTemperature)
	viper.SetDefault(KeyOpsBookingURL, DefaultOpsBookingURL)
	viper.SetDefault(KeyOpsOrdersURL, DefaultOpsOrdersURL)
	viper.SetDefault(KeyOpsLeaguesURL, DefaultOpsLeaguesURL)
	viper.SetDefault(KeyWordPressURL, DefaultWordPressURL)
	viper.SetDefault(KeyRateLimitRPM, DefaultRateLimitRPM)
	viper.SetDefault(KeyPort, DefaultPort)
}

// Load reads configuration from Viper (env vars, config file, defaults) and
// returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		GatewayURL:         viper.GetString(KeyGatewayURL),
		GatewayAPIKey:      viper.GetString(KeyGatewayAPIKey),
		Model:              viper.GetString(KeyModel),
		FallbackModel:      viper.GetString(KeyFallbackModel),
		Timeout:            time.Duration(viper.GetInt(KeyTimeoutMS)) * time.Millisecond,
		FallbackTimeout:    time.Duration(viper.GetInt(KeyFallbackTimeoutMS)) * time.Millisecond,
		MaxHistory:         viper.GetInt(KeyMaxHistory),
		MaxTokens:          viper.GetInt(KeyMaxTokens),
		Temperature:        viper.GetFloat64(KeyTemperature),
		LoggingEnabled:     viper.GetBool(KeyLoggingEnabled),
		TelemetryURL:       viper.GetString(KeyTelemetryURL),
		TelemetrySecret:    viper.GetString(KeyTelemetrySecret),
		DataDir:            viper.GetString(KeyDataDir),
		OpsBookingURL:      viper.GetString(KeyOpsBookingURL),
		OpsOrdersURL:       viper.GetString(KeyOpsOrdersURL),
		OpsLeaguesURL:      viper.GetString(KeyOpsLeaguesURL),
		WordPressURL:       viper.GetString(KeyWordPressURL),
		AdminAPIKeys:       splitKeys(viper.GetString(KeyAdminAPIKeys)),
		RateLimitRPM:       viper.GetInt(KeyRateLimitRPM),
		RedactPatternsFile: viper.GetString(KeyRedactPatternsFile),
		Port:               viper.GetInt(KeyPort),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// splitKeys parses a comma-separated key list, dropping empty entries.
func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

func (c *Config) validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout_ms must be positive")
	}
	if c.FallbackTimeout <= 0 {
		return fmt.Errorf("fallback_timeout_ms must be positive")
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2]")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in (0, 65535]")
	}
	return nil
}

// RequireGatewayKey fails fast when no gateway credential is configured.
// Called by serve; config show works without one.
func (c *Config) RequireGatewayKey() error {
	if c.GatewayAPIKey == "" {
		return fmt.Errorf("gateway_api_key is required; set TERI_GATEWAY_API_KEY")
	}
	return nil
}
