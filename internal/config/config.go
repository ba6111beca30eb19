package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis    `yaml:"redis"`
	Postgres   Postgres `yaml:"postgres"`
	JWTSecret  string   `yaml:"jwt-secret" env:"JWT_SECRET" env-default:"dev-secret-change-in-production"`
	Game       Game     `yaml:"game"`
	Room       Room     `yaml:"room"`
	Rating     Rating   `yaml:"rating"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Postgres holds the match results database. An empty DSN disables result persistence.
type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN" env-default:""`
}

type Game struct {
	TwoDecks      bool          `yaml:"two-decks" env:"GAME_TWO_DECKS" env-default:"false"`
	RoundsPerGame int           `yaml:"rounds-per-game" env:"GAME_ROUNDS_PER_GAME" env-default:"1"`
	TurnTimeout   time.Duration `yaml:"turn-timeout" env:"GAME_TURN_TIMEOUT" env-default:"0s"`
	MaxPlayers    int           `yaml:"max-players" env:"GAME_MAX_PLAYERS" env-default:"12"`
}

type Room struct {
	IdleTTL     time.Duration `yaml:"idle-ttl" env:"ROOM_IDLE_TTL" env-default:"10m"`
	SnapshotTTL time.Duration `yaml:"snapshot-ttl" env:"ROOM_SNAPSHOT_TTL" env-default:"24h"`
	SendBuffer  int           `yaml:"send-buffer" env:"ROOM_SEND_BUFFER" env-default:"256"`
}

type Rating struct {
	Initial int `yaml:"initial" env:"RATING_INITIAL" env-default:"1000"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads config.yml and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
