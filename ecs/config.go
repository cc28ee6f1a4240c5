package ecs

import (
	"os"

	"github.com/argus-labs/ecsfilter/schema"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config holds the configuration of a World. It can be set via environment variables with the
// specified defaults.
type Config struct {
	// Minimum level of the world's logs, parsed by zerolog.
	LogLevel string `env:"ECS_LOG_LEVEL" envDefault:"info"`

	// Address of the redis server that stores component schemas. Schemas aren't persisted if empty.
	RedisAddress string `env:"ECS_REDIS_ADDRESS"`

	// Password of the redis server.
	RedisPassword string `env:"ECS_REDIS_PASSWORD"`

	// Prefix of the redis keys the world writes.
	SchemaNamespace string `env:"ECS_SCHEMA_NAMESPACE" envDefault:"ecs"`
}

// LoadConfig loads the world configuration from environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse world config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *Config) validate() error {
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	if cfg.RedisAddress != "" && cfg.SchemaNamespace == "" {
		return eris.New("schema namespace cannot be empty when redis is configured")
	}
	return nil
}

// WorldOption configures a World.
type WorldOption func(*World)

// WithLogger sets the world's logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) { w.logger = logger }
}

// WithSchemaStorage makes the world check every newly registered component against the schema it
// stored on a previous run.
func WithSchemaStorage(s schema.Storage) WorldOption {
	return func(w *World) { w.schemas = s }
}

// WithConfig applies a loaded Config: a stderr logger at the configured level, and a redis schema
// storage if a redis address is set.
func WithConfig(cfg Config) WorldOption {
	return func(w *World) {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		w.logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

		if cfg.RedisAddress != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddress,
				Password: cfg.RedisPassword,
			})
			w.schemas = schema.NewRedisStorage(client, cfg.SchemaNamespace)
		}
	}
}

// NewWorldFromEnv loads the Config from the environment and creates a World with it. opts are
// applied after the config, so they take precedence.
func NewWorldFromEnv(opts ...WorldOption) (*World, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewWorld(append([]WorldOption{WithConfig(cfg)}, opts...)...), nil
}
