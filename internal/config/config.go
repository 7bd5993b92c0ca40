// Package config loads server settings from a YAML file with
// SES_* environment overrides on top, so deployments can keep
// credentials out of the file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/XimoLopez/ses-hospedajes/internal/job"
)

// Registry endpoints per environment.
const (
	endpointPre = "https://hospedajes.pre.ses.mir.es/hospedajes-web/ws/v1/comunicacion"
	endpointPro = "https://hospedajes.ses.mir.es/hospedajes-web/ws/v1/comunicacion"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	APIUser     string `yaml:"api_user"`
	APIPassword string `yaml:"api_password"`
}

// SESConfig holds the registry credentials and submission tuning.
type SESConfig struct {
	// Environment selects the registry endpoint: "pre" or "pro".
	Environment string `yaml:"environment"`

	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	EntityCode        string `yaml:"entity_code"`
	EstablishmentCode string `yaml:"establishment_code"`

	TimeoutSeconds        int `yaml:"timeout_seconds"`
	ReconcileDelaySeconds int `yaml:"reconcile_delay_seconds"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full server configuration.
type Config struct {
	Server ServerConfig    `yaml:"server"`
	SES    SESConfig       `yaml:"ses"`
	Store  string          `yaml:"store"` // "memory" or "redis"
	Redis  job.RedisConfig `yaml:"redis"`
	Queue  int             `yaml:"queue_size"`
	Log    LogConfig       `yaml:"log"`
}

// Endpoint returns the registry URL for the configured environment.
func (c *Config) Endpoint() string {
	if c.SES.Environment == "pro" {
		return endpointPro
	}
	return endpointPre
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file
// and configures from defaults plus environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.SES.Environment == "" {
		cfg.SES.Environment = "pre"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.ReconcileDelaySeconds == 0 {
		cfg.SES.ReconcileDelaySeconds = 5
	}
	if cfg.Store == "" {
		cfg.Store = "memory"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.Namespace == "" {
		cfg.Redis.Namespace = "ses"
	}
	if cfg.Queue == 0 {
		cfg.Queue = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.SES.Environment, "SES_ENVIRONMENT")
	setString(&cfg.SES.Username, "SES_USERNAME")
	setString(&cfg.SES.Password, "SES_PASSWORD")
	setString(&cfg.SES.EntityCode, "SES_ENTITY_CODE")
	setString(&cfg.SES.EstablishmentCode, "SES_ESTABLISHMENT_CODE")
	setString(&cfg.Server.APIUser, "SES_API_USER")
	setString(&cfg.Server.APIPassword, "SES_API_PASSWORD")
	setString(&cfg.Store, "SES_STORE")
	setString(&cfg.Redis.Host, "SES_REDIS_HOST")
	setString(&cfg.Redis.Password, "SES_REDIS_PASSWORD")
	setInt(&cfg.Server.Port, "SES_PORT")
	setInt(&cfg.Redis.Port, "SES_REDIS_PORT")
}

// Validate fails fast on anything that would otherwise surface as a
// rejected submission at runtime.
func (c *Config) Validate() error {
	if c.SES.Environment != "pre" && c.SES.Environment != "pro" {
		return fmt.Errorf("invalid environment %q: must be pre or pro", c.SES.Environment)
	}
	if c.SES.Username == "" || c.SES.Password == "" {
		return fmt.Errorf("missing SES credentials: username and password are required")
	}
	if c.SES.EntityCode == "" {
		return fmt.Errorf("missing SES entity code")
	}
	if c.SES.EstablishmentCode == "" {
		return fmt.Errorf("missing SES establishment code")
	}
	if c.Store != "memory" && c.Store != "redis" {
		return fmt.Errorf("invalid store %q: must be memory or redis", c.Store)
	}
	return nil
}
