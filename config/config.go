// Package config loads portal settings from an optional .env file, an optional
// YAML file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vendorportal/lookups"
)

const (
	DefaultPath = "config/config.yaml"
	devSecret   = "dev-secret-change-me"
)

type Config struct {
	App      AppConfig       `mapstructure:"app"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Blob     BlobConfig      `mapstructure:"blob"`
	ETL      ETLConfig       `mapstructure:"etl"`
	Cron     CronConfig      `mapstructure:"cron"`
	Lookups  lookups.Lookups `mapstructure:"lookups"` // overrides only
}

type AppConfig struct {
	Name                  string        `mapstructure:"name"`
	Env                   string        `mapstructure:"env"`
	LogLevel              string        `mapstructure:"log_level"`
	Port                  string        `mapstructure:"port"`
	UploadFolder          string        `mapstructure:"upload_folder"`
	OutputFolder          string        `mapstructure:"output_folder"`
	TemplateFolder        string        `mapstructure:"template_folder"`
	JWTSecret             string        `mapstructure:"jwt_secret"`
	SessionTTL            time.Duration `mapstructure:"session_ttl"`
	AllowMultipleSessions bool          `mapstructure:"allow_multiple_sessions"`
	MaxUploadMB           int64         `mapstructure:"max_upload_mb"`
}

// DatabaseConfig points at Postgres. An empty host runs the portal on
// in-memory stores.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) Enabled() bool { return d.Host != "" }

// DSN is the key=value connection string understood by lib/pq and pgx.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig backs the single product batch. An empty addr keeps batches in
// memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	BatchTTL time.Duration `mapstructure:"batch_ttl"`
}

type BlobConfig struct {
	Backend          string        `mapstructure:"backend"` // azure or local
	ConnectionString string        `mapstructure:"connection_string"`
	Container        string        `mapstructure:"container"`
	SilverContainer  string        `mapstructure:"silver_container"`
	LocalRoot        string        `mapstructure:"local_root"`
	SASTTL           time.Duration `mapstructure:"sas_ttl"`
}

type ETLConfig struct {
	Mode         string        `mapstructure:"mode"` // webhook, kafka or none
	TriggerURL   string        `mapstructure:"trigger_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	KafkaBrokers []string      `mapstructure:"kafka_brokers"`
	KafkaTopic   string        `mapstructure:"kafka_topic"`
}

type CronConfig struct {
	CleanupSpec   string        `mapstructure:"cleanup_spec"`
	StagingMaxAge time.Duration `mapstructure:"staging_max_age"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
}

// Vocabulary returns the default lookups with the configured overrides applied.
func (c *Config) Vocabulary() lookups.Lookups {
	return lookups.Default().Merge(c.Lookups)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vendor-portal")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.upload_folder", "uploads")
	v.SetDefault("app.output_folder", "output")
	v.SetDefault("app.template_folder", "templates")
	v.SetDefault("app.jwt_secret", devSecret)
	v.SetDefault("app.session_ttl", 12*time.Hour)
	v.SetDefault("app.allow_multiple_sessions", true)
	v.SetDefault("app.max_upload_mb", 50)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "vendor_portal")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.batch_ttl", 24*time.Hour)

	v.SetDefault("blob.backend", "local")
	v.SetDefault("blob.connection_string", "")
	v.SetDefault("blob.container", "bronze")
	v.SetDefault("blob.silver_container", "silver")
	v.SetDefault("blob.local_root", "blobdata")
	v.SetDefault("blob.sas_ttl", 15*time.Minute)

	v.SetDefault("etl.mode", "webhook")
	v.SetDefault("etl.trigger_url", "")
	v.SetDefault("etl.timeout", 5*time.Second)
	v.SetDefault("etl.kafka_brokers", []string{})
	v.SetDefault("etl.kafka_topic", "vendor-submissions")

	v.SetDefault("cron.cleanup_spec", "0 2 * * *")
	v.SetDefault("cron.staging_max_age", 72*time.Hour)
	v.SetDefault("cron.job_timeout", 10*time.Minute)
}

// Load reads .env (if present), then the YAML file at path (if present), then
// the environment. Keys map to variables by upper-casing and replacing dots
// with underscores, e.g. BLOB_CONNECTION_STRING.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by earlier deployments
	if err := v.BindEnv("blob.connection_string", "BLOB_CONNECTION_STRING", "AZURE_STORAGE_CONNECTION_STRING"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("blob.container", "BLOB_CONTAINER", "AZURE_CONTAINER_NAME"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config failed: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the portal cannot start with.
func (c *Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app.port is required")
	}
	if c.App.JWTSecret == "" {
		return fmt.Errorf("app.jwt_secret is required")
	}
	if c.App.Env == "production" && c.App.JWTSecret == devSecret {
		return fmt.Errorf("app.jwt_secret must be set in production")
	}
	if c.App.SessionTTL <= 0 {
		return fmt.Errorf("app.session_ttl must be positive")
	}

	switch c.Blob.Backend {
	case "azure":
		if c.Blob.ConnectionString == "" {
			return fmt.Errorf("blob.connection_string is required for the azure backend")
		}
	case "local":
		if c.Blob.LocalRoot == "" {
			return fmt.Errorf("blob.local_root is required for the local backend")
		}
	default:
		return fmt.Errorf("blob.backend %q is not supported", c.Blob.Backend)
	}
	if c.Blob.Container == "" || c.Blob.SilverContainer == "" {
		return fmt.Errorf("blob.container and blob.silver_container are required")
	}

	switch c.ETL.Mode {
	case "webhook":
		// an empty trigger_url is allowed; triggers are then logged and skipped
	case "kafka":
		if len(c.ETL.KafkaBrokers) == 0 || c.ETL.KafkaTopic == "" {
			return fmt.Errorf("etl.kafka_brokers and etl.kafka_topic are required for kafka mode")
		}
	case "none":
	default:
		return fmt.Errorf("etl.mode %q is not supported", c.ETL.Mode)
	}

	if c.Database.Enabled() && c.Database.User == "" {
		return fmt.Errorf("database.user is required when database.host is set")
	}
	return nil
}
