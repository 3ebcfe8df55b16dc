package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080", Timezone: "UTC"},
		Storage:   StorageConfig{Driver: StorageMemory},
		Auth:      AuthConfig{Mode: AuthHeader},
		Engine:    EngineConfig{MaxGracePerMonth: 2, DefaultMinOccurrences: 3, DefaultInsightLimit: 10, DefaultWindowDays: 30},
		RateLimit: RateLimitConfig{Enabled: true, RequestsPerMinute: 60},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "supabase storage needs credentials",
			mutate:  func(c *Config) { c.Storage.Driver = StorageSupabase },
			wantErr: "SUPABASE_URL is required",
		},
		{
			name:    "sqlite needs a dsn",
			mutate:  func(c *Config) { c.Storage.Driver = StorageSQLite },
			wantErr: "storage.dsn is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Storage.Driver = "mongo" },
			wantErr: `unknown storage.driver "mongo"`,
		},
		{
			name:    "supabase auth needs credentials",
			mutate:  func(c *Config) { c.Auth.Mode = AuthSupabase },
			wantErr: "SUPABASE_SERVICE_KEY is required for auth.mode=supabase",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Server.Timezone = "Mars/Olympus" },
			wantErr: "invalid server.timezone",
		},
		{
			name:    "redis without addr",
			mutate:  func(c *Config) { c.Redis.Enabled = true },
			wantErr: "redis.addr is required",
		},
		{
			name:    "zero insight limit",
			mutate:  func(c *Config) { c.Engine.DefaultInsightLimit = 0 },
			wantErr: "engine.default_insight_limit must be positive",
		},
		{
			name:    "rate limit without budget",
			mutate:  func(c *Config) { c.RateLimit.RequestsPerMinute = 0 },
			wantErr: "ratelimit.requests_per_minute must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, AuthHeader, cfg.Auth.Mode)
	assert.Equal(t, 2, cfg.Engine.MaxGracePerMonth)
	assert.Equal(t, 3, cfg.Engine.DefaultMinOccurrences)
	assert.Equal(t, 10, cfg.Engine.DefaultInsightLimit)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("INNERLOG_ENGINE_MAX_GRACE_PER_MONTH", "4")
	t.Setenv("INNERLOG_LOG_BACKEND", "zap")
	t.Setenv("INNERLOG_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://*.example.org")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Engine.MaxGracePerMonth)
	assert.Equal(t, "zap", cfg.Log.Backend)
	assert.Equal(t, []string{"https://a.example.com", "https://*.example.org"}, cfg.CORS.AllowedOrigins)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  []string
	}{
		{name: "single joined value", items: []string{"https://a.example.com, https://b.example.com"}, want: []string{"https://a.example.com", "https://b.example.com"}},
		{name: "pre-split with padding", items: []string{"https://a.example.com", " https://*.example.org "}, want: []string{"https://a.example.com", "https://*.example.org"}},
		{name: "empty parts dropped", items: []string{" ", "https://a.example.com,,"}, want: []string{"https://a.example.com"}},
		{name: "nothing", items: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.items...))
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "innerlog.yaml")
	yaml := "storage:\n  driver: sqlite\n  dsn: \"file::memory:\"\nserver:\n  timezone: America/New_York\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "file::memory:", cfg.Storage.DSN)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INNERLOG_STORAGE_DRIVER", "postgres")
	t.Setenv("INNERLOG_STORAGE_DSN", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dsn is required")
}
