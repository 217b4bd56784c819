package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game carries the match rules and the two resolution policy switches.
type Game struct {
	TotalRounds  int `yaml:"total-rounds" env-default:"5"`
	MovesPerTurn int `yaml:"moves-per-turn" env-default:"2"`
	TurnSeconds  int `yaml:"turn-seconds" env-default:"30"`

	// Cascade repeats explode/gravity/refill until the board is stable.
	// Off by default: one settle per action.
	Cascade bool `yaml:"cascade" env-default:"false"`
	// ConsumeMoveOnNoMatch burns a move on a sub-3 click. Off by default:
	// a failed click costs nothing.
	ConsumeMoveOnNoMatch bool `yaml:"consume-move-on-no-match" env-default:"false"`

	QueueTTLSeconds int `yaml:"queue-ttl-seconds" env-default:"60"`
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

func (that *Game) TurnDuration() time.Duration {
	return time.Duration(that.TurnSeconds) * time.Second
}

func (that *Game) QueueTTL() time.Duration {
	return time.Duration(that.QueueTTLSeconds) * time.Second
}
