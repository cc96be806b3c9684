package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/gassara-kys/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 3000
	DefaultBackendURL = "http://localhost:8000"
	DefaultSessionTTL = 30 * time.Minute
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Backend struct {
		BaseURL string `yaml:"baseURL"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"backend"`

	Logger struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logger"`

	Display struct {
		TimeZone string `yaml:"timeZone"`
	} `yaml:"display"`

	Session struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"session"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`
}

// envOverrides dibaca dari environment dengan prefix GUARDIAN_
type envOverrides struct {
	Port     int    `envconfig:"port"`
	APIURL   string `envconfig:"api_url"`
	LogLevel string `split_words:"true"`
	TimeZone string `split_words:"true"`
}

// Default returns the config used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = DefaultPort
	cfg.Backend.BaseURL = DefaultBackendURL
	cfg.Session.TTL = DefaultSessionTTL
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.RateLimit.Capacity = 20
	cfg.RateLimit.RefillRate = 1
	return &cfg
}

// Load baca file config.yaml lalu timpa dengan env GUARDIAN_*.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("guardian", &env); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.APIURL != "" {
		c.Backend.BaseURL = env.APIURL
	}
	if env.LogLevel != "" {
		c.Logger.Level = env.LogLevel
	}
	if env.TimeZone != "" {
		c.Display.TimeZone = env.TimeZone
	}
	return nil
}

// Validate checks values that would only fail later at request time.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend baseURL: %q", c.Backend.BaseURL)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid display timeZone: %w", err)
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = DefaultSessionTTL
	}
	return nil
}

// Location is the time zone used to render scan timestamps.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Display.TimeZone)
}

// Addr is the listen address for the dashboard server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
