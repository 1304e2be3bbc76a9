// Package config loads pipeline configuration from the process
// environment, following the same caarlos0/env + godotenv pattern the
// rest of this codebase's config packages use.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-recognized option for the pipeline
// plus the operational knobs a deployed Go service needs.
type Config struct {
	AppEnv string `env:"NODE_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"3001"`

	// DBPath is the Postgres DSN for the persistent Store. When empty, or
	// when the Store cannot open it, the pipeline falls back to an
	// in-memory Store.
	DBPath string `env:"DB_PATH"`

	ExternalLabelerAPIKey string        `env:"EXTERNAL_LABELER_API_KEY"`
	LabelerModel          string        `env:"LABELER_MODEL" envDefault:"gpt-4o-mini"`
	LabelerRateLimitRPS   int           `env:"LABELER_RATE_LIMIT_RPS" envDefault:"2"`
	LabelerTimeout        time.Duration `env:"LABELER_TIMEOUT" envDefault:"20s"`

	EmbeddingAPIKey       string `env:"EMBEDDING_API_KEY"`
	EmbeddingModel        string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions   int    `env:"EMBEDDING_DIMENSIONS" envDefault:"384"`
	EmbeddingRateLimitRPS int    `env:"EMBEDDING_RATE_LIMIT_RPS" envDefault:"5"`

	UnclusteredMaxAgeHours int `env:"UNCLUSTERED_MAX_AGE_HOURS" envDefault:"72"`
	UnclusteredBatchLimit  int `env:"UNCLUSTERED_BATCH_LIMIT" envDefault:"50"`

	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"5m"`

	RefinerLookbackHours  int     `env:"REFINER_LOOKBACK_HOURS" envDefault:"24"`
	RefinerMinMembers     int     `env:"REFINER_MIN_MEMBERS" envDefault:"4"`
	RefinerCoherenceFloor float32 `env:"REFINER_COHERENCE_FLOOR" envDefault:"0.60"`

	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
}

// Load reads configuration from a local .env file (if present) and then
// from the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
