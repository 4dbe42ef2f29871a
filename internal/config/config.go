package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeeyuni/clone-junglebook/internal/catalog"
)

type Config struct {
	Server struct {
		Port         int    `yaml:"port"`
		ClientOrigin string `yaml:"client_origin"`
	} `yaml:"server"`

	Database struct {
		Backend string `yaml:"backend"` // sqlite, redis or memory
		Path    string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"redis"`

	Auth struct {
		GitHubClientID     string `yaml:"github_client_id"`
		GitHubClientSecret string `yaml:"github_client_secret"`
		RedirectURL        string `yaml:"redirect_url"`
		JWTSecret          string `yaml:"jwt_secret"`
		SessionTTLHours    int    `yaml:"session_ttl_hours"`
	} `yaml:"auth"`

	Schedule struct {
		StartTime   string `yaml:"start_time"` // "10:00"
		SlotMinutes int    `yaml:"slot_minutes"`
		SlotsPerDay int    `yaml:"slots_per_day"`
	} `yaml:"schedule"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	RateLimit struct {
		ReservePerMinute int `yaml:"reserve_per_minute"`
		Burst            int `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.ClientOrigin == "" {
		cfg.Server.ClientOrigin = "http://localhost:3000"
	}
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/junglebook.db"
	}
	if cfg.Database.Backend == "sqlite" {
		if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, err
		}
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}

	return &cfg, nil
}

// SessionTTL returns the session token lifetime.
func (c *Config) SessionTTL() time.Duration {
	if c.Auth.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// RedisTTL returns how long horizon hashes live in redis.
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.Redis.TTLHours) * time.Hour
}

// ScheduleParams converts the configured schedule into catalog parameters.
func (c *Config) ScheduleParams() (catalog.Params, error) {
	p := catalog.DefaultParams
	if c.Schedule.StartTime != "" {
		start, err := catalog.ParseTimeOfDay(c.Schedule.StartTime)
		if err != nil {
			return p, fmt.Errorf("schedule.start_time: %w", err)
		}
		p.Start = start
	}
	if c.Schedule.SlotMinutes > 0 {
		p.SlotMinutes = c.Schedule.SlotMinutes
	}
	if c.Schedule.SlotsPerDay > 0 {
		p.Count = c.Schedule.SlotsPerDay
	}
	return p, nil
}
