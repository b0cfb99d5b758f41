package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override file values.
const EnvPrefix = "MONEYPIT_"

// Default values for the server configuration.
const (
	DefaultHTTPPort         = 8080
	DefaultCoefficientsPath = "config/coefficients.yaml"
	DefaultRateLimitRPS     = 10.0
	DefaultRateLimitBurst   = 20
	DefaultCacheBackend     = CacheMemory
	DefaultCacheTTL         = 10 * time.Minute
	DefaultRedisAddr        = "localhost:6379"
	DefaultLogLevel         = "info"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultAuthHeader       = "X-API-Key"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Auth modes.
const (
	AuthNone   = "none"
	AuthAPIKey = "apikey"
)

// Config is the full server configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Coefficients CoefficientsConfig `koanf:"coefficients"`
	RateLimit    RateLimitConfig    `koanf:"ratelimit"`
	Cache        CacheConfig        `koanf:"cache"`
	Log          LogConfig          `koanf:"log"`
	Auth         AuthConfig         `koanf:"auth"`
	Alerts       AlertsConfig       `koanf:"alerts"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	// HTTPPort serves the REST API, WebSocket simulator and /metrics.
	HTTPPort int `koanf:"http_port"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// CoefficientsConfig locates the coefficient file.
type CoefficientsConfig struct {
	Path string `koanf:"path"`

	// Watch hot-reloads the file on change. An invalid edit is logged and the
	// previous coefficients stay active.
	Watch bool `koanf:"watch"`
}

// RateLimitConfig is the per-client token bucket. RPS 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// CacheConfig selects where evaluated reports are cached.
type CacheConfig struct {
	// Backend is one of: memory | redis | none.
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`

	// RedisAddr is host:port, used when Backend == "redis".
	RedisAddr string `koanf:"redis_addr"`
	// RedisPasswordEnv names the environment variable holding the password.
	RedisPasswordEnv string `koanf:"redis_password_env"`
}

// RedisPassword resolves the Redis password from the environment.
func (c CacheConfig) RedisPassword() string {
	if c.RedisPasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.RedisPasswordEnv)
}

// AuthConfig guards the REST API and the WebSocket simulator. /metrics is
// never guarded.
type AuthConfig struct {
	// Mode is one of: none | apikey.
	Mode string `koanf:"mode"`
	// Header carries the key on each request.
	Header string `koanf:"header"`
	// KeyEnv names the environment variable holding the expected key.
	KeyEnv string `koanf:"key_env"`
}

// Key resolves the expected API key from the environment.
func (c AuthConfig) Key() string {
	if c.KeyEnv == "" {
		return ""
	}
	return os.Getenv(c.KeyEnv)
}

// AlertsConfig routes coefficient reload alerts.
type AlertsConfig struct {
	Webhooks []WebhookConfig `koanf:"webhooks"`

	// Cooldown is the minimum gap between repeat deliveries of a firing
	// alert (default 15m).
	Cooldown time.Duration `koanf:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | pagerduty | http.
	Type string `koanf:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `koanf:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `koanf:"level"`
}

// Load reads the YAML file at path, overlays MONEYPIT_* environment
// variables, fills defaults and validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	// MONEYPIT_SERVER_HTTP_PORT -> server.http_port
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("server config: load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("server config: unmarshal: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// envKey maps an environment variable to a koanf path. The first segment
// after the prefix names the section; the rest is the field name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        DefaultHTTPPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Coefficients: CoefficientsConfig{
			Path:  DefaultCoefficientsPath,
			Watch: true,
		},
		RateLimit: RateLimitConfig{
			RPS:   DefaultRateLimitRPS,
			Burst: DefaultRateLimitBurst,
		},
		Cache: CacheConfig{
			Backend:   DefaultCacheBackend,
			TTL:       DefaultCacheTTL,
			RedisAddr: DefaultRedisAddr,
		},
		Log:  LogConfig{Level: DefaultLogLevel},
		Auth: AuthConfig{Mode: AuthNone, Header: DefaultAuthHeader},
	}
}

func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if cfg.Coefficients.Path == "" {
		return fmt.Errorf("coefficients.path is required")
	}
	if cfg.RateLimit.RPS < 0 {
		return fmt.Errorf("ratelimit.rps must not be negative")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return fmt.Errorf("ratelimit.burst must be at least 1 when rps is set, got %d", cfg.RateLimit.Burst)
	}
	switch cfg.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q unknown: want memory|redis|none", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	switch cfg.Auth.Mode {
	case AuthNone:
	case AuthAPIKey:
		if cfg.Auth.Header == "" {
			return fmt.Errorf("auth.header is required in apikey mode")
		}
		if cfg.Auth.KeyEnv == "" {
			return fmt.Errorf("auth.key_env is required in apikey mode")
		}
		if cfg.Auth.Key() == "" {
			return fmt.Errorf("auth.key_env: %s is unset or empty; apikey mode needs a key", cfg.Auth.KeyEnv)
		}
	default:
		return fmt.Errorf("auth.mode %q unknown: want none|apikey", cfg.Auth.Mode)
	}
	if cfg.Alerts.Cooldown < 0 {
		return fmt.Errorf("alerts.cooldown must not be negative")
	}
	for i, wh := range cfg.Alerts.Webhooks {
		switch wh.Type {
		case "teams", "slack", "pagerduty", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d].type %q unknown: want teams|slack|pagerduty|http", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("alerts.webhooks[%d].url_env is required", i)
		}
	}
	return nil
}
