package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config carries every process-level setting. A YAML file supplies the base
// values, environment variables override them.
type Config struct {
	LogLevel string `env:"CMDKIT_LOG_LEVEL" yaml:"log_level"`
	LogFile  string `env:"CMDKIT_LOG_FILE" yaml:"log_file"`

	CacheDir     string        `env:"CMDKIT_CACHE_DIR" yaml:"cache_dir"`
	CacheTTL     time.Duration `env:"CMDKIT_CACHE_TTL" yaml:"cache_ttl"`
	CacheMaxSize int64         `env:"CMDKIT_CACHE_MAX_SIZE" yaml:"cache_max_size"`

	// CacheStore selects the persistence backend: local (default), memory,
	// sqlite, postgres, s3 or consul.
	CacheStore string `env:"CMDKIT_CACHE_STORE" yaml:"cache_store"`

	SqlitePath  string `env:"CMDKIT_CACHE_SQLITE_PATH" yaml:"sqlite_path"`
	PostgresDSN string `env:"CMDKIT_CACHE_POSTGRES_DSN" yaml:"postgres_dsn"`

	S3Endpoint  string `env:"CMDKIT_CACHE_S3_ENDPOINT" yaml:"s3_endpoint"`
	S3Bucket    string `env:"CMDKIT_CACHE_S3_BUCKET" yaml:"s3_bucket"`
	S3Prefix    string `env:"CMDKIT_CACHE_S3_PREFIX" yaml:"s3_prefix"`
	S3AccessKey string `env:"CMDKIT_CACHE_S3_ACCESS_KEY" yaml:"s3_access_key"`
	S3SecretKey string `env:"CMDKIT_CACHE_S3_SECRET_KEY" yaml:"s3_secret_key"`
	S3UseSSL    bool   `env:"CMDKIT_CACHE_S3_USE_SSL" yaml:"s3_use_ssl"`

	ConsulAddress string `env:"CMDKIT_CACHE_CONSUL_ADDRESS" yaml:"consul_address"`
	ConsulPrefix  string `env:"CMDKIT_CACHE_CONSUL_PREFIX" yaml:"consul_prefix"`

	// Defaults is merged into assoc-argument validation as the base
	// mapping: a key listed here satisfies a missing required parameter.
	Defaults map[string]string `yaml:"defaults"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		CacheDir:     defaultCacheDir(),
		CacheTTL:     180 * 24 * time.Hour,
		CacheMaxSize: 300 * 1024 * 1024,
		CacheStore:   "local",
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "cmdkit")
	}
	return filepath.Join(os.TempDir(), "cmdkit-cache")
}
