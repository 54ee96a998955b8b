package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
//
// DATABASE_URL and JWT_SECRET are required; the process refuses to start
// without them. The WeChat credentials are optional: when absent, the login
// endpoint reports the service as unconfigured instead of calling out.
type Config struct {
	Port            int           `envconfig:"PORT" default:"3000"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	WeChatAppID     string        `envconfig:"WECHAT_APP_ID" default:""`
	WeChatAppSecret string        `envconfig:"WECHAT_APP_SECRET" default:""`
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL        time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	Version         string        `envconfig:"VERSION" default:"dev"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
