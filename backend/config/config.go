package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the dashboard backend.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Seed       SeedConfig       `yaml:"seed"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ServerConfig controls the HTTP listener and SPA serving.
type ServerConfig struct {
	Address      string `yaml:"address"`
	FrontendPath string `yaml:"frontendPath"`
}

// DatabaseConfig locates the SQLite file holding admins and settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SeedConfig locates the static threat batch loaded at startup.
type SeedConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig controls JWT issuing.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// LoggingConfig controls the file logger.
type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

// SimulationConfig sets boot-time defaults for live mode. The persisted
// dashboard settings row takes precedence once it exists.
type SimulationConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load initialises Config from a YAML file and optional environment
// overrides. A .env file next to the binary is honoured if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("THREATSCOPE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret must be set (config file or THREATSCOPE_JWT_SECRET)")
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:      ":8080",
			FrontendPath: "./frontend/dist",
		},
		Database:   DatabaseConfig{Path: "threatscope.db"},
		Seed:       SeedConfig{Path: "data/threats-seed.json"},
		Auth:       AuthConfig{TokenTTL: 24 * time.Hour},
		Logging:    LoggingConfig{Dir: "./logs"},
		Simulation: SimulationConfig{Interval: 5 * time.Second},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("THREATSCOPE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("THREATSCOPE_FRONTEND_PATH"); v != "" {
		cfg.Server.FrontendPath = v
	}
	if v := os.Getenv("THREATSCOPE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("THREATSCOPE_SEED_PATH"); v != "" {
		cfg.Seed.Path = v
	}
	if v := os.Getenv("THREATSCOPE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("THREATSCOPE_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("THREATSCOPE_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("THREATSCOPE_SIM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Simulation.Interval = d
		}
	}
}
