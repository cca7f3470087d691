// Package internal holds the process configuration shared by the bridge
// binaries.
package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	EtherpadScheme  string `env:"ETHERPAD_SCHEME,default=http" validate:"oneof=http https"`
	EtherpadHost    string `env:"ETHERPAD_HOST,default=127.0.0.1" validate:"required"`
	EtherpadPort    int    `env:"ETHERPAD_PORT,default=9001" validate:"gt=0,lte=65535"`
	EtherpadAPIKey  string `env:"ETHERPAD_API_KEY,required=true" validate:"required"`
	EtherpadVersion string `env:"ETHERPAD_VERSION,default=1.2.14" validate:"required"`

	// SessionTTL bounds the validity of authoring sessions; UpdateThrottle
	// is the trailing window collapsing bursts of pad update notifications
	// into one content poll.
	SessionTTL     time.Duration `env:"SESSION_TTL,default=24h" validate:"gt=0"`
	UpdateThrottle time.Duration `env:"UPDATE_THROTTLE,default=1s" validate:"gt=0"`

	ProxyHost string `env:"PROXY_HOST,default=0.0.0.0"`
	ProxyPort int    `env:"PROXY_PORT,default=9002" validate:"gt=0,lte=65535"`

	MonitorEnabled  bool          `env:"MONITOR_ENABLED,default=true"`
	MonitorInterval time.Duration `env:"MONITOR_INTERVAL,default=5m" validate:"gt=0"`

	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
}

// Load reads the optional .env file, the environment, and validates the
// result.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("config invalid: %w", err)
	}

	return config, nil
}
