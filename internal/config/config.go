package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime settings. Every field can come from the
// environment (or a .env file); the command line can override any of
// them.
type Config struct {
	SMTPAddr   string `envconfig:"MAILHOLE_SMTP_ADDR" default:"0.0.0.0:2525"`
	HTTPAddr   string `envconfig:"MAILHOLE_HTTP_ADDR" default:"0.0.0.0:8080"`
	Mailboxes  string `envconfig:"MAILHOLE_MAILBOXES" default:"./mailboxes"`
	Domain     string `envconfig:"MAILHOLE_DOMAIN" default:"localhost"`
	BusBacklog int    `envconfig:"MAILHOLE_BUS_BACKLOG" default:"16"`
	LogLevel   string `envconfig:"MAILHOLE_LOG_LEVEL" default:"info"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
