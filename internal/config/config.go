// Package config loads the leakloader configuration. Values merge in
// ascending precedence: built-in defaults, the YAML file, environment
// overrides. Command-line flags are applied on top by the CLI. The result is
// one explicit struct handed down the pipeline; nothing reads ambient state
// after startup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"leakloader/internal/dest"
	"leakloader/internal/ingest"
	"leakloader/internal/source"
)

// DefaultBatchSize is the number of rows per bulk insert when no override is
// configured.
const DefaultBatchSize = ingest.DefaultBatchSize

// SourceConfig selects where the CSV artifacts are read from.
type SourceConfig struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// S3Config parameterizes the S3 source backend.
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// DestinationConfig selects and parameterizes the destination database.
type DestinationConfig struct {
	Driver         string `yaml:"driver"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	DBName         string `yaml:"dbname"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	Service        string `yaml:"service"`
	CredentialsDir string `yaml:"credentials_dir"`
	Path           string `yaml:"path"`
}

// Config is the root configuration for a load run.
type Config struct {
	Source       SourceConfig      `yaml:"source"`
	Destination  DestinationConfig `yaml:"destination"`
	BatchSize    int               `yaml:"batch_size"`
	Policy       string            `yaml:"policy"`
	Policies     map[string]string `yaml:"policies"`
	ExpectedRows map[string]int64  `yaml:"expected_rows"`
	MetricsAddr  string            `yaml:"metrics_addr"`
	Manifest     string            `yaml:"manifest"`
}

// Default returns the configuration used when no file and no overrides are
// present: local CSV directory into a local postgres as the loader identity.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides, then fills remaining zero values with defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.Driver == "" {
		c.Source.Driver = string(source.DriverFilesystem)
	}
	if c.Source.Dir == "" {
		c.Source.Dir = "./data/csv"
	}
	if c.Destination.Driver == "" {
		c.Destination.Driver = string(dest.DriverPostgres)
	}
	if c.Destination.Host == "" {
		c.Destination.Host = "localhost"
	}
	if c.Destination.Port == 0 {
		c.Destination.Port = 5432
	}
	if c.Destination.DBName == "" {
		c.Destination.DBName = "oldb"
	}
	if c.Destination.User == "" {
		c.Destination.User = "oldb_loader"
	}
	if c.Destination.SSLMode == "" {
		c.Destination.SSLMode = "prefer"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Policy == "" {
		c.Policy = string(ingest.PolicySkip)
	}
}

func (c *Config) applyEnv() {
	c.Source.Dir = envOr("LEAKLOADER_DATA_DIR", c.Source.Dir)
	c.Source.S3.Bucket = envOr("LEAKLOADER_S3_BUCKET", c.Source.S3.Bucket)
	c.Source.S3.Region = envOr("LEAKLOADER_S3_REGION", c.Source.S3.Region)
	c.Source.S3.Prefix = envOr("LEAKLOADER_S3_PREFIX", c.Source.S3.Prefix)
	c.Source.S3.Endpoint = envOr("LEAKLOADER_S3_ENDPOINT", c.Source.S3.Endpoint)
	c.Destination.Host = envOr("LEAKLOADER_DB_HOST", c.Destination.Host)
	c.Destination.DBName = envOr("LEAKLOADER_DB_NAME", c.Destination.DBName)
	c.Destination.User = envOr("LEAKLOADER_DB_USER", c.Destination.User)
	c.Destination.SSLMode = envOr("LEAKLOADER_DB_SSLMODE", c.Destination.SSLMode)
	if v := os.Getenv("LEAKLOADER_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Destination.Port = port
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SourceStoreConfig converts the loaded values into the source facade's config.
func (c Config) SourceStoreConfig() source.Config {
	return source.Config{
		Driver: source.Driver(c.Source.Driver),
		Dir:    c.Source.Dir,
		S3: source.S3Config{
			Region:    c.Source.S3.Region,
			Bucket:    c.Source.S3.Bucket,
			Prefix:    c.Source.S3.Prefix,
			Endpoint:  c.Source.S3.Endpoint,
			PathStyle: c.Source.S3.PathStyle,
		},
	}
}

// DestConfig converts the loaded values into the destination facade's config.
func (c Config) DestConfig() dest.Config {
	return dest.Config{
		Driver: dest.Driver(c.Destination.Driver),
		Postgres: dest.PostgresConfig{
			Host:           c.Destination.Host,
			Port:           c.Destination.Port,
			User:           c.Destination.User,
			Password:       c.Destination.Password,
			DBName:         c.Destination.DBName,
			SSLMode:        c.Destination.SSLMode,
			CredentialsDir: c.Destination.CredentialsDir,
		},
		Path: c.Destination.Path,
	}
}
