package config

import "time"

// DefaultConfig returns a Config with sensible default values. Credentials
// intentionally have no default; they come from the config file or
// environment interpolation.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			URI:            "bolt://localhost:7687",
			Username:       "neo4j",
			Password:       "",
			Database:       "neo4j",
			PoolSize:       50,
			ConnectTimeout: 30 * time.Second,
			QueryTimeout:   30 * time.Second,
		},
		Ingest: IngestConfig{
			BatchSize:      1000,
			ConflictPolicy: "reject",
		},
		Cache: CacheConfig{
			Enabled:       true,
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Dispatcher: DispatcherConfig{
			CallTimeout: 30 * time.Second,
			MaxInFlight: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}
