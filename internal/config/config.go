package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel      string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort      string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort    string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage       string        `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis         Redis         `yaml:"redis"`
	ComputerDelay time.Duration `yaml:"computer-delay" env:"COMPUTER_DELAY" env-default:"500ms"`
	RandomSeed    int64         `yaml:"random-seed" env:"RANDOM_SEED" env-default:"0"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load reads path when it exists and falls back to environment variables and defaults otherwise.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.ComputerDelay < 0 {
		return fmt.Errorf("computer-delay must not be negative, got %s", that.ComputerDelay)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
