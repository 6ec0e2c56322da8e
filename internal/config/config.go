package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is assembled once at startup and passed explicitly to the
// layers that need it. Values come from an optional traction.yaml with
// environment variables taking precedence.
type Config struct {
	DatabaseURL string `yaml:"databaseUrl"`
	JWTSecret   string `yaml:"jwtSecret"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	CORSOrigins string `yaml:"corsOrigins"`
}

var defaultConfigPaths = []string{"traction.yaml", "traction.yml"}

func Load() (*Config, error) {
	cfg := &Config{}
	for _, path := range defaultConfigPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "traction.db"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.CORSOrigins == "" {
		cfg.CORSOrigins = "*"
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
