package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from files.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a new Loader instance.
func NewLoader(validator Validator) Loader {
	return &viperLoader{validator: validator}
}

// Load loads configuration from the specified file path. Settings absent
// from the file keep their defaults; ${ENV_VAR} references in string
// values are interpolated from the environment. Returns an error if the
// file doesn't exist, cannot be parsed, or fails validation.
func (l *viperLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	interpolate(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path. If
// the file doesn't exist, returns the default configuration.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, fmt.Errorf("default configuration validation failed: %w", err)
		}
		return cfg, nil
	}
	return l.Load(path)
}

// setDefaults registers the default values so partial config files work.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("store.uri", def.Store.URI)
	v.SetDefault("store.username", def.Store.Username)
	v.SetDefault("store.database", def.Store.Database)
	v.SetDefault("store.pool_size", def.Store.PoolSize)
	v.SetDefault("store.connect_timeout", def.Store.ConnectTimeout)
	v.SetDefault("store.query_timeout", def.Store.QueryTimeout)
	v.SetDefault("ingest.batch_size", def.Ingest.BatchSize)
	v.SetDefault("ingest.conflict_policy", def.Ingest.ConflictPolicy)
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("cache.ttl", def.Cache.TTL)
	v.SetDefault("cache.sweep_interval", def.Cache.SweepInterval)
	v.SetDefault("dispatcher.call_timeout", def.Dispatcher.CallTimeout)
	v.SetDefault("dispatcher.max_in_flight", def.Dispatcher.MaxInFlight)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("tracing.enabled", def.Tracing.Enabled)
}

// interpolate expands ${ENV_VAR} references in the string settings where
// secrets and endpoints typically live.
func interpolate(cfg *Config) {
	cfg.Store.URI = interpolateString(cfg.Store.URI)
	cfg.Store.Username = interpolateString(cfg.Store.Username)
	cfg.Store.Password = interpolateString(cfg.Store.Password)
	cfg.Store.Database = interpolateString(cfg.Store.Database)
	cfg.Ingest.FieldMapsPath = interpolateString(cfg.Ingest.FieldMapsPath)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables leave the reference untouched.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
