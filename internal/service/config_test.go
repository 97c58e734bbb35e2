package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage_tree/internal/repository"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"server.port", cfg.Server.Port, 8080},
		{"storage.driver", cfg.Storage.Driver, repository.DriverFile},
		{"auth.token_ttl", cfg.Auth.TokenTTL, 24 * time.Hour},
		{"ai.model", cfg.AI.Model, "gpt-4o-mini"},
		{"publish.branch", cfg.Publish.Branch, "main"},
		{"view.max_scale", cfg.View.MaxScale, 3.0},
		{"view.initial_scale", cfg.View.InitialScale, 0.8},
		{"upload.max_size", cfg.Upload.MaxSize, int64(5 << 20)},
		{"upload.max_import_size", cfg.Upload.MaxImportSize, int64(10 << 20)},
		{"rate_limit.burst", cfg.RateLimit.Burst, 3},
		{"log.level", cfg.Log.Level, "info"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HERITAGE_SERVER_PORT", "9090")
	t.Setenv("HERITAGE_STORAGE_DRIVER", "badger")
	t.Setenv("HERITAGE_AUTH_ADMIN_KEY", "s3cret")
	t.Setenv("HERITAGE_PUBLISH_OWNER", "octo")
	t.Setenv("HERITAGE_VIEW_MAX_SCALE", "5")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, repository.DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.AdminKey)
	assert.Equal(t, "octo", cfg.Publish.Owner)
	assert.Equal(t, 5.0, cfg.ViewConfig().MaxScale)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heritage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: sqlite
  path: /tmp/heritage.db
ai:
  base_url: https://generativelanguage.googleapis.com/v1beta/openai
log:
  level: debug
`), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, repository.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai", cfg.AIConfig().BaseURL)

	opts := cfg.StorageOptions()
	assert.Equal(t, "/tmp/heritage.db", opts.Path)
	assert.True(t, opts.Debug)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"bad port", "server.port", 0},
		{"bad zoom", "view.min_scale", 10.0},
		{"unknown driver", "storage.driver", "etcd"},
		{"postgres without dsn", "storage.driver", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := LoadConfig(v)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrConfig))
		})
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)

	lc := cfg.LoggerConfig()
	assert.Equal(t, LogLevelInfo, lc.Level)
	assert.Equal(t, LogFormatText, lc.Format)

	ac := cfg.AuthConfig()
	assert.Equal(t, 24*time.Hour, ac.TokenDuration)

	assert.Equal(t, 0.1, cfg.ViewConfig().MinScale)
}
