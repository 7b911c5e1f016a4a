package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "peakform", cfg.Database.Name)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "0 0 3 * * *", cfg.Schedule.CycleRollover)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Client.BaseURL)
	assert.NotEmpty(t, cfg.Client.SessionFile)
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  name: "peakform_test"
jwt:
  secret: "file-secret"
  expiration: "30m"
schedule:
  cycle_rollover: "0 0 4 * * *"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "peakform_test", cfg.Database.Name)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "0 0 4 * * *", cfg.Schedule.CycleRollover)
	// Keys the file does not set keep their defaults.
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
}
