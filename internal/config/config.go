// Package config loads the server configuration from an optional yaml file
// with environment variable overrides. A .env file, when present, is loaded
// first.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr       string          `yaml:"addr"`
	DBPath     string          `yaml:"dbPath"`
	SessionTTL Duration        `yaml:"sessionTTL"`
	LogLevel   string          `yaml:"logLevel"`
	RateLimit  RateLimitConfig `yaml:"rateLimit"`
}

// Duration decodes yaml strings like "24h" via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type RateLimitConfig struct {
	// Requests per second per client; 0 disables limiting.
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		Addr:       ":8080",
		DBPath:     "./data/fritter.db",
		SessionTTL: Duration(24 * time.Hour),
		LogLevel:   "info",
		RateLimit:  RateLimitConfig{RPS: 20, Burst: 40},
	}
}

// Load reads path if it exists, then applies environment overrides. An empty
// path skips the file entirely.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv("PORT"); p != "" {
		c.Addr = ":" + p
	}
	if v := os.Getenv("FRITTER_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("FRITTER_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("FRITTER_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = Duration(d)
		}
	}
	if v := os.Getenv("FRITTER_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FRITTER_RATE_RPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimit.RPS = n
		}
	}
}
