package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvInternalAPIURL, EnvPublicAPIURL, EnvDatabaseURL, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestResolveAPIBase_Precedence(t *testing.T) {
	t.Run("internal wins over public and file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvInternalAPIURL, "http://api:8000")
		t.Setenv(EnvPublicAPIURL, "https://public.example.com")
		assert.Equal(t, "http://api:8000", ResolveAPIBase("http://file:9000"))
	})

	t.Run("public wins over file", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvPublicAPIURL, "https://public.example.com/")
		assert.Equal(t, "https://public.example.com", ResolveAPIBase("http://file:9000"))
	})

	t.Run("file used when env empty", func(t *testing.T) {
		clearEnv(t)
		assert.Equal(t, "http://file:9000", ResolveAPIBase("http://file:9000"))
	})

	t.Run("local default", func(t *testing.T) {
		clearEnv(t)
		assert.Equal(t, DefaultAPIBase, ResolveAPIBase(""))
		assert.Equal(t, "http://localhost:8000", ResolveAPIBase("   "))
	})
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, "ticker-desk", cfg.Name)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, "./database.db", cfg.Storage.DBPath)
	assert.Equal(t, 3, cfg.Backend.MaxRetries)
	assert.Equal(t, 60, cfg.Backend.RetryDelaySeconds)
	assert.Zero(t, cfg.Backend.GrpcPort)
}

func TestNewConfig_FromYAMLWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDatabaseURL, "postgres://u:p@db:5432/tw?sslmode=disable")
	t.Setenv(EnvLogLevel, "debug")

	path := writeYAML(t, `
name: desk
host: 127.0.0.1
port: 3100
api_base: http://backend:8000/
backend:
  port: 8100
  grpc_port: 9100
  workers: 2
`)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "desk", cfg.Name)
	assert.Equal(t, 3100, cfg.Port)
	assert.Equal(t, "http://backend:8000", cfg.APIBase)
	assert.Equal(t, 9100, cfg.Backend.GrpcPort)
	assert.Equal(t, "postgres", cfg.Storage.DBType)
	assert.Equal(t, "postgres://u:p@db:5432/tw?sslmode=disable", cfg.Storage.DBConnectionString)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestNewConfig_SQLiteDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDatabaseURL, "sqlite:///./data/stocks.db")

	cfg, err := NewConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, "./data/stocks.db", cfg.Storage.DBPath)
}

func TestNewConfig_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = NewConfig(writeYAML(t, "port: 80\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")

	_, err = NewConfig(writeYAML(t, "api_base: ftp://nowhere\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute http(s) URL")

	_, err = NewConfig(writeYAML(t, "storage:\n  db_type: mongo\n"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg, err := NewConfig("")
	require.NoError(t, err)
	cfg.Backend.RefreshIntervalSeconds = 300

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 300, loaded.Backend.RefreshIntervalSeconds)
}
