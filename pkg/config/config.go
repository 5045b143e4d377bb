package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Config holds the configuration for the replica process.
type Config struct {
	// ParticipantID identifies the local participant whose ledger this replica tracks.
	ParticipantID string `env:"PARTICIPANT_ID,required"`
	// SessionID identifies the market session and keys the bootstrap snapshot.
	SessionID string `env:"SESSION_ID,required"`
	// Assets lists the asset names traded in this session.
	Assets []string `env:"ASSETS" envDefault:"A"`
	// StartingCash and StartingAssets are the session endowments the
	// ledger opens with.
	StartingCash   int64 `env:"STARTING_CASH" envDefault:"0"`
	StartingAssets int64 `env:"STARTING_ASSETS" envDefault:"0"`

	Feed     KafkaConfig   `envPrefix:"FEED_KAFKA_"`    // confirmation event feed
	Commands KafkaConfig   `envPrefix:"COMMAND_KAFKA_"` // outbound command topic
	Redis    RedisConfig   `envPrefix:"REDIS_"`         // bootstrap snapshot source
	Gateway  GatewayConfig `envPrefix:"GATEWAY_"`       // renderer-facing HTTP/WS surface
}

// KafkaConfig holds the configuration for a Kafka reader or writer.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"default_group"`
	Brokers []string `env:"BROKER,required"`
}

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addrs    string `env:"ADDRESS,required"`
	Password string `env:"PASSWORD" envDefault:""`
	Username string `env:"USERNAME" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

// GatewayConfig holds the configuration for the renderer gateway.
type GatewayConfig struct {
	Addr           string   `env:"ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}
