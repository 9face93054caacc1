package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
database:
  host: 127.0.0.1
  port: 3306
  username: root
  password: pw
  database: videogen
provider:
  avatar:
    base_url: http://avatar.local
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 3, cfg.Provider.ConcurrencyFor("avatar"))
	assert.Equal(t, 2, cfg.Provider.ConcurrencyFor("text2video"))
	assert.Equal(t, 1, cfg.Provider.ConcurrencyFor("unknown"))
	assert.Equal(t, "SELF_ONLY", cfg.Provider.TikTok.PrivacyLevel)
	assert.Equal(t, 500, cfg.Batch.MaxItems)
	assert.False(t, cfg.Batch.StrictCompletion)
	assert.Equal(t, "provider.results", cfg.Kafka.Topics.ProviderResults)
	assert.Equal(t, "video.lifecycle", cfg.Kafka.Topics.LifecycleEvents)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.RetryBackoff)
	assert.Equal(t, 30*time.Second, cfg.Kafka.MaxRetryBackoff)
	assert.Zero(t, cfg.Kafka.MaxProcessAttempts)
	assert.Equal(t, 15*time.Second, cfg.Poller.Interval)
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/videogen?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.GetDSN())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
batch:
  max_items: 10
`)
	t.Setenv("GO_VIDEO_BATCH_MAX_ITEMS", "20")
	t.Setenv("GO_VIDEO_BATCH_STRICT_COMPLETION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Batch.MaxItems)
	assert.True(t, cfg.Batch.StrictCompletion)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
