package veldt

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	defaultRedisAddress = "localhost:6379"
	defaultNamespace    = "veldt"
	defaultPort         = "4040"
	defaultLogLevel     = "info"
	defaultTickRate     = 1 // ticks per second
)

type WorldConfig struct {
	RedisAddress  string
	RedisPassword string
	Namespace     string
	Port          string
	LogLevel      string
	// TickRate is the number of ticks per second.
	TickRate int
}

func loadWorldConfig() (*WorldConfig, error) {
	tickRate, err := getIntEnv("VELDT_TICK_RATE", defaultTickRate)
	if err != nil {
		return nil, err
	}
	cfg := &WorldConfig{
		RedisAddress:  getEnv("REDIS_ADDRESS", defaultRedisAddress),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		Namespace:     getEnv("VELDT_NAMESPACE", defaultNamespace),
		Port:          getEnv("VELDT_PORT", defaultPort),
		LogLevel:      getEnv("VELDT_LOG_LEVEL", defaultLogLevel),
		TickRate:      tickRate,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the fields of the config carry usable values.
func (cfg *WorldConfig) Validate() error {
	if cfg.Namespace == "" {
		return eris.New("namespace must not be empty")
	}
	if cfg.TickRate <= 0 {
		return eris.Errorf("tick rate must be positive, got %d", cfg.TickRate)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// TickInterval returns the duration between the start of consecutive ticks.
func (cfg *WorldConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(cfg.TickRate)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0, eris.Wrapf(err, "%s must be an integer", key)
	}
	return num, nil
}
