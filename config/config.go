package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServerConfig    ServerConfig    `json:"server"`
	MarketConfig    MarketConfig    `json:"market"`
	RedisConfig     RedisConfig     `json:"redis"`
	SchedulerConfig SchedulerConfig `json:"scheduler"`
	MetricsConfig   MetricsConfig   `json:"metrics"`
	LoggingConfig   LoggingConfig   `json:"logging"`
}

// ServerConfig holds the HTTP API configuration
type ServerConfig struct {
	Host            string   `json:"host"`
	Port            int      `json:"port"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ProductionMode  bool     `json:"production_mode"`
	ShutdownTimeout int      `json:"shutdown_timeout"` // seconds
}

// MarketConfig holds the market data source configuration
type MarketConfig struct {
	BaseURL        string `json:"base_url"`        // chart API base, empty = public Yahoo endpoint
	TimeoutSeconds int    `json:"timeout_seconds"` // per-request HTTP timeout
	DefaultSymbol  string `json:"default_symbol"`
}

// RedisConfig holds the checkpoint store configuration
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// SchedulerConfig holds the checkpoint scheduler configuration
type SchedulerConfig struct {
	Enabled bool     `json:"enabled"`
	Symbols []string `json:"symbols"`
}

// MetricsConfig holds Prometheus exposure settings
type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

type LoggingConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

func Load() (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile("config.json")
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Server config
	cfg.ServerConfig.Host = getEnvOrDefault("WEB_HOST", defaultStr(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.Port = getEnvIntOrDefault("WEB_PORT", defaultInt(cfg.ServerConfig.Port, 8000))
	if origins := os.Getenv("SERVER_ALLOWED_ORIGINS"); origins != "" {
		cfg.ServerConfig.AllowedOrigins = strings.Split(origins, ",")
	}
	if len(cfg.ServerConfig.AllowedOrigins) == 0 {
		cfg.ServerConfig.AllowedOrigins = []string{"*"}
	}
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("PRODUCTION_MODE", boolStr(cfg.ServerConfig.ProductionMode)) == "true"
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", defaultInt(cfg.ServerConfig.ShutdownTimeout, 10))

	// Market data config
	cfg.MarketConfig.BaseURL = getEnvOrDefault("MARKET_BASE_URL", cfg.MarketConfig.BaseURL)
	cfg.MarketConfig.TimeoutSeconds = getEnvIntOrDefault("MARKET_TIMEOUT_SECONDS", defaultInt(cfg.MarketConfig.TimeoutSeconds, 10))
	cfg.MarketConfig.DefaultSymbol = getEnvOrDefault("DEFAULT_SYMBOL", defaultStr(cfg.MarketConfig.DefaultSymbol, "^NSEI"))

	// Redis config
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		cfg.RedisConfig.Enabled = true
		cfg.RedisConfig.Address = addr
	}
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)

	// Scheduler config
	cfg.SchedulerConfig.Enabled = getEnvOrDefault("SCHEDULER_ENABLED", "true") == "true"
	if symbols := os.Getenv("SCHEDULER_SYMBOLS"); symbols != "" {
		cfg.SchedulerConfig.Symbols = strings.Split(symbols, ",")
	}
	if len(cfg.SchedulerConfig.Symbols) == 0 {
		cfg.SchedulerConfig.Symbols = []string{"^NSEI", "^NSEBANK"}
	}

	// Metrics config
	cfg.MetricsConfig.Enabled = getEnvOrDefault("METRICS_ENABLED", "true") == "true"

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultStr(cfg.LoggingConfig.Level, "info"))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
