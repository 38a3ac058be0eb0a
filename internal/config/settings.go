package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Remote backends.
const (
	BackendApper       = "apper"
	BackendGoogleTasks = "googletasks"
	BackendPostgres    = "postgres"
)

// Settings are read from config.yaml and overridden by the environment.
type Settings struct {
	Env      string           `yaml:"env" env:"TASKFLOW_ENV" env-default:"prod"`
	Backend  string           `yaml:"backend" env:"TASKFLOW_BACKEND" env-default:"apper"`
	Apper    ApperSettings    `yaml:"apper"`
	Postgres PostgresSettings `yaml:"postgres"`
	HTTP     HTTPSettings     `yaml:"http"`
}

type ApperSettings struct {
	BaseURL  string `yaml:"base_url" env:"APPER_BASE_URL" env-default:"https://api.apper.io/v1"`
	CanvasID string `yaml:"canvas_id" env:"APPER_PROJECT_ID"`
	APIKey   string `yaml:"api_key" env:"APPER_PUBLIC_KEY"`
}

type PostgresSettings struct {
	URL            string        `yaml:"url" env:"POSTGRES_URL"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `yaml:"ping_timeout" env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type HTTPSettings struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// LoadSettings reads path when it exists, otherwise only the environment.
func LoadSettings(path string) (*Settings, error) {
	s := new(Settings)

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, s); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(s); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	default:
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks enumerated settings.
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendApper, BackendGoogleTasks, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
	return nil
}
