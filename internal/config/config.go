// Package config defines the service configuration surface: store
// connection, ingest pipeline tuning, cache lifetime, dispatcher limits,
// and the ambient logging/tracing settings. Configuration loads from YAML
// with ${ENV_VAR} interpolation for credentials.
package config

import "time"

// Config is the root configuration for the service.
type Config struct {
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// StoreConfig configures the graph store connection.
type StoreConfig struct {
	URI            string        `mapstructure:"uri" validate:"required,uri"`
	Username       string        `mapstructure:"username" validate:"required"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	PoolSize       int           `mapstructure:"pool_size" validate:"min=1,max=500"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"min=1s"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" validate:"min=1s"`
}

// IngestConfig tunes the batch loading pipeline.
type IngestConfig struct {
	BatchSize int `mapstructure:"batch_size" validate:"min=1,max=100000"`

	// ConflictPolicy is "reject" or "last-write-wins".
	ConflictPolicy string `mapstructure:"conflict_policy" validate:"oneof=reject last-write-wins"`

	// FieldMapsPath optionally points at a YAML file of additional
	// per-source field maps.
	FieldMapsPath string `mapstructure:"field_maps_path"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	TTL           time.Duration `mapstructure:"ttl" validate:"min=1s"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// DispatcherConfig bounds query-tool execution.
type DispatcherConfig struct {
	// CallTimeout is the per-call deadline, covering any wait for an
	// execution slot.
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"min=100ms"`

	// MaxInFlight bounds concurrent tool executions.
	MaxInFlight int `mapstructure:"max_in_flight" validate:"min=1,max=10000"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// TracingConfig configures OpenTelemetry span export. Disabled means the
// dispatcher uses a noop tracer.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}
