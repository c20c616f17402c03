package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Auth.AdminEmails)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9000"
database:
  driver: postgres
  postgres_dsn: postgres://u:p@db:5432/fit
jwt:
  secret: from-file
  expiration: 30m
auth:
  admin_emails: [root@example.com]
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SERVER_ADDRESS", ":9100")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Address, "env wins over file")
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/fit", cfg.Database.PostgresDSN)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, []string{"root@example.com"}, cfg.Auth.AdminEmails)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:      JWTConfig{Secret: "x"},
		Database: DatabaseConfig{Driver: DriverMemory},
		Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	require.NoError(t, valid.Validate())

	badDriver := valid
	badDriver.Database.Driver = "sqlite"
	assert.ErrorContains(t, badDriver.Validate(), "sqlite")

	badPath := valid
	badPath.Metrics.Path = "metrics"
	assert.Error(t, badPath.Validate())

	metricsOff := badPath
	metricsOff.Metrics.Enabled = false
	assert.NoError(t, metricsOff.Validate())
}
