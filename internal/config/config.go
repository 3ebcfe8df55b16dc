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

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageSupabase = "supabase"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Auth modes
const (
	AuthSupabase = "supabase"
	AuthHeader   = "header"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Engine    EngineConfig    `mapstructure:"engine"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Env            string        `mapstructure:"env"`
	Timezone       string        `mapstructure:"timezone"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LogConfig selects the logging backend and verbosity
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// StorageConfig selects where events, check-ins and streaks live
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SupabaseConfig holds Supabase-specific configuration
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// AuthConfig selects how requests are authenticated. Header mode trusts an
// X-User-ID header and is meant for local development behind a gateway.
type AuthConfig struct {
	Mode string `mapstructure:"mode"`
}

// RedisConfig enables the distributed streak lock
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// EngineConfig holds analytics engine tunables
type EngineConfig struct {
	MaxGracePerMonth      int `mapstructure:"max_grace_per_month"`
	DefaultMinOccurrences int `mapstructure:"default_min_occurrences"`
	DefaultInsightLimit   int `mapstructure:"default_insight_limit"`
	DefaultWindowDays     int `mapstructure:"default_window_days"`
}

// CORSConfig lists allowed origins. Entries may use a single leading
// wildcard subdomain, e.g. https://*.example.com.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds requests per user per minute
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

// Load reads configuration from .env, environment variables and an
// optional config file. configFile overrides the search path when set.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("INNERLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also bind the unprefixed names used by hosting platforms
	v.BindEnv("server.port", "INNERLOG_SERVER_PORT", "PORT")
	v.BindEnv("supabase.url", "INNERLOG_SUPABASE_URL", "SUPABASE_URL")
	v.BindEnv("supabase.service_key", "INNERLOG_SUPABASE_SERVICE_KEY", "SUPABASE_SERVICE_KEY")
	v.BindEnv("storage.dsn", "INNERLOG_STORAGE_DSN", "DATABASE_URL")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Env values may arrive whole or already split on commas
	config.CORS.AllowedOrigins = splitList(config.CORS.AllowedOrigins...)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", "slog")

	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("auth.mode", AuthHeader)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.lock_ttl", 10*time.Second)

	v.SetDefault("engine.max_grace_per_month", 2)
	v.SetDefault("engine.default_min_occurrences", 3)
	v.SetDefault("engine.default_insight_limit", 10)
	v.SetDefault("engine.default_window_days", 30)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)
}

func splitList(items ...string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Location resolves Server.Timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Server.Timezone)
}

// Validate checks that all required configuration values are present
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSupabase:
		errs = append(errs, c.requireSupabase("storage.driver=supabase")...)
	case StorageSQLite, StoragePostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Auth.Mode {
	case AuthHeader:
	case AuthSupabase:
		if c.Storage.Driver != StorageSupabase {
			errs = append(errs, c.requireSupabase("auth.mode=supabase")...)
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.mode %q", c.Auth.Mode))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr is required when redis is enabled"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid server.timezone: %w", err))
	}
	if c.Engine.MaxGracePerMonth < 0 {
		errs = append(errs, fmt.Errorf("engine.max_grace_per_month must not be negative"))
	}
	if c.Engine.DefaultMinOccurrences < 1 {
		errs = append(errs, fmt.Errorf("engine.default_min_occurrences must be positive"))
	}
	if c.Engine.DefaultInsightLimit < 1 {
		errs = append(errs, fmt.Errorf("engine.default_insight_limit must be positive"))
	}
	if c.Engine.DefaultWindowDays < 1 {
		errs = append(errs, fmt.Errorf("engine.default_window_days must be positive"))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		errs = append(errs, fmt.Errorf("ratelimit.requests_per_minute must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) requireSupabase(reason string) []error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, fmt.Errorf("SUPABASE_URL is required for %s", reason))
	}
	if c.Supabase.ServiceKey == "" {
		errs = append(errs, fmt.Errorf("SUPABASE_SERVICE_KEY is required for %s", reason))
	}
	return errs
}
