package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the CLI's configuration, read from the YAML file named by
// --config. A local .env file is loaded into the process environment
// first; no field of Config is read from the environment, and no flag
// overrides a field.
type Config struct {
	Store struct {
		Kind  string `yaml:"kind"` // "file" | "sqlite" | "mysql"
		Path  string `yaml:"path"`
		DSN   string `yaml:"dsn"`
		Table string `yaml:"table"`
	} `yaml:"store"`

	Engine struct {
		WorkerCount       int   `yaml:"worker_count"`
		BatchLimit        int   `yaml:"batch_limit"`
		IdleSleepMs       int64 `yaml:"idle_sleep_ms"`
		OfflineSleepMs    int64 `yaml:"offline_sleep_ms"`
		InflightTimeoutMs int64 `yaml:"inflight_timeout_ms"`
	} `yaml:"engine"`

	Retry struct {
		MaxAttempts uint32  `yaml:"max_attempts"`
		BaseDelayMs int64   `yaml:"base_delay_ms"`
		MaxDelayMs  int64   `yaml:"max_delay_ms"`
		Factor      float64 `yaml:"factor"`
	} `yaml:"retry"`
}

// loadConfig loads .env (if present, ignored if absent) then the YAML
// file at path (if non-empty).
func loadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
