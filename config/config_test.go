package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 12*time.Hour, cfg.App.SessionTTL)
	assert.Equal(t, "local", cfg.Blob.Backend)
	assert.Equal(t, "bronze", cfg.Blob.Container)
	assert.Equal(t, 5*time.Second, cfg.ETL.Timeout)
	assert.False(t, cfg.Database.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := writeYAML(t, `
app:
  port: "9090"
  log_level: debug
database:
  host: db.internal
  user: portal
etl:
  mode: kafka
  kafka_brokers: ["k1:9092", "k2:9092"]
lookups:
  currencies: [USD]
`)
	t.Setenv("APP_PORT", "7070")
	t.Setenv("AZURE_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("BLOB_BACKEND", "azure")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.Database.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal")
	assert.Contains(t, cfg.Database.DSN(), "dbname=vendor_portal")
	assert.Equal(t, "azure", cfg.Blob.Backend)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Blob.ConnectionString)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.ETL.KafkaBrokers)

	vocab := cfg.Vocabulary()
	assert.Equal(t, []string{"USD"}, vocab.Currencies)
	assert.True(t, vocab.IsLevelType("Pallet"))
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}
	cases := []struct {
		name string
		edit func(c *Config)
		want string
	}{
		{"azure without connection", func(c *Config) { c.Blob.Backend = "azure" }, "blob.connection_string is required for the azure backend"},
		{"unknown backend", func(c *Config) { c.Blob.Backend = "s3" }, `blob.backend "s3" is not supported`},
		{"kafka without brokers", func(c *Config) { c.ETL.Mode = "kafka" }, "etl.kafka_brokers and etl.kafka_topic are required for kafka mode"},
		{"unknown etl mode", func(c *Config) { c.ETL.Mode = "carrier-pigeon" }, `etl.mode "carrier-pigeon" is not supported`},
		{"production secret", func(c *Config) { c.App.Env = "production" }, "app.jwt_secret must be set in production"},
		{"database user", func(c *Config) { c.Database.Host = "db" }, "database.user is required when database.host is set"},
		{"session ttl", func(c *Config) { c.App.SessionTTL = 0 }, "app.session_ttl must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.edit(cfg)
			assert.EqualError(t, cfg.Validate(), tc.want)
		})
	}
}
