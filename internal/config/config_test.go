package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentboard/profiledir/internal/services/clubhistory"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, clubhistory.PolicyReject, cfg.Policy())
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "profiledir.commits", cfg.KafkaTopic)
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":                    "9000",
		"LOG_LEVEL":               "debug",
		"STORAGE_TYPE":            "postgres",
		"DATABASE_URL":            "postgres://localhost/profiledir",
		"INCOMPLETE_ENTRY_POLICY": "drop",
		"SESSION_DURATION":        "2h",
		"KAFKA_ENABLED":           "true",
		"KAFKA_BROKERS":           "k1:9092,k2:9092",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StoragePostgres, cfg.StorageType)
	assert.Equal(t, clubhistory.PolicyDropIncomplete, cfg.Policy())
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{"unknown storage", map[string]string{"STORAGE_TYPE": "sqlite"}, "STORAGE_TYPE"},
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}, "REDIS_URL"},
		{"postgres without url", map[string]string{"STORAGE_TYPE": "postgres"}, "DATABASE_URL"},
		{"unknown policy", map[string]string{"INCOMPLETE_ENTRY_POLICY": "ignore"}, "INCOMPLETE_ENTRY_POLICY"},
		{"zero session", map[string]string{"SESSION_DURATION": "0s"}, "SESSION_DURATION"},
		{"bad port", map[string]string{"PORT": "http"}, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9100\n"), 0o600))
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
