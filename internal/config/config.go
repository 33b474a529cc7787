// Package config loads service configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends for conversation state.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the full service configuration.
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Store struct {
		// Backend is "memory" or "redis".
		Backend string `yaml:"backend"`
		// TTL expires idle conversations; zero keeps them forever.
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"store"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Gemini struct {
		APIKey string `yaml:"api_key"`
		// Model is the default generation model; CritiqueModel and
		// DepthModel override it for the summary critique and the
		// depth-assessment calls.
		Model         string `yaml:"model"`
		CritiqueModel string `yaml:"critique_model"`
		DepthModel    string `yaml:"depth_model"`
	} `yaml:"gemini"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.Store.Backend = StoreMemory
	cfg.Store.TTL = 24 * time.Hour
	cfg.Redis.Addr = "localhost:6379"
	cfg.Gemini.Model = "gemini-2.5-flash"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty) and then
// applies environment overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Store.Backend != StoreMemory && cfg.Store.Backend != StoreRedis {
		return cfg, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTP.Addr, "CHECKIN_HTTP_ADDR")
	setString(&cfg.Store.Backend, "CHECKIN_STORE_BACKEND")
	setString(&cfg.Redis.Addr, "CHECKIN_REDIS_ADDR")
	setString(&cfg.Redis.Password, "CHECKIN_REDIS_PASSWORD")
	setString(&cfg.Gemini.Model, "CHECKIN_MODEL")
	setString(&cfg.Gemini.CritiqueModel, "CHECKIN_CRITIQUE_MODEL")
	setString(&cfg.Gemini.DepthModel, "CHECKIN_DEPTH_MODEL")
	setString(&cfg.LogLevel, "CHECKIN_LOG_LEVEL")

	// GEMINI_API_KEY is the conventional name; CHECKIN_GEMINI_API_KEY wins
	// if both are present.
	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.APIKey, "CHECKIN_GEMINI_API_KEY")

	if v := os.Getenv("CHECKIN_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("CHECKIN_STORE_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Store.TTL = ttl
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
