package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the defaults of new matches and the clocks around them.
type Game struct {
	Mode         string        `yaml:"mode" env-default:"pvc"`
	Difficulty   string        `yaml:"difficulty" env-default:"medium"`
	AIMark       string        `yaml:"ai-mark" env-default:"O"`
	TimerEnabled bool          `yaml:"timer-enabled" env-default:"false"`
	TurnDuration time.Duration `yaml:"turn-duration" env-default:"30s"`
	AIDelay      time.Duration `yaml:"ai-delay" env-default:"750ms"`
	HistoryLimit int           `yaml:"history-limit" env-default:"50"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
