// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigDir is the default configuration directory
	DefaultConfigDir = ".schematica/configs"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.json"
)

// Load reads configuration from ~/.schematica/configs/config.json
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configPath)

	// Set defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, use defaults
			return loadFromDefaults(v)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromPath loads configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("database.sqlite_path", filepath.Join(homeDir, ".schematica/db/schematica.db"))

	// Memory backend defaults
	v.SetDefault("memory.backend", "keyword")
	v.SetDefault("memory.embedding_model", "text-embedding-3-small")
	v.SetDefault("memory.embedding_dimensions", 1536)
	v.SetDefault("memory.remote_index", "schematica-catalog")
	v.SetDefault("memory.remote_timeout_seconds", 5)

	// Graph traversal defaults. The hop limit and context cap bound the
	// token cost of graph enrichment downstream.
	v.SetDefault("graph.max_hops", 2)
	v.SetDefault("graph.context_cap", 20)

	// Pipeline defaults
	v.SetDefault("pipeline.top_k", 10)
	v.SetDefault("pipeline.boost_factor", 1.2)
	v.SetDefault("pipeline.token_budget", 2000)

	// Reasoner defaults
	v.SetDefault("reasoner.model", "gpt-4o-mini")
	v.SetDefault("reasoner.timeout_seconds", 30)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval_minutes", 60)
}

// loadFromDefaults creates a config from default values
func loadFromDefaults(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	// Validate database type
	if cfg.Database.Type != "sqlite" && cfg.Database.Type != "postgres" {
		return fmt.Errorf("database.type must be 'sqlite' or 'postgres', got '%s'", cfg.Database.Type)
	}

	// Validate database connection info
	if cfg.Database.Type == "sqlite" && cfg.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required when type is 'sqlite'")
	}
	if cfg.Database.Type == "postgres" && cfg.Database.PostgresDSN == "" {
		return fmt.Errorf("database.postgres_dsn is required when type is 'postgres'")
	}

	// Validate memory backend selection
	switch cfg.Memory.Backend {
	case "keyword", "vector", "remote":
	default:
		return fmt.Errorf("memory.backend must be 'keyword', 'vector' or 'remote', got '%s'", cfg.Memory.Backend)
	}

	// The vector tier needs an embedding provider
	if cfg.Memory.Backend == "vector" && cfg.Memory.EmbeddingURL == "" {
		return fmt.Errorf("memory.embedding_url is required when backend is 'vector'")
	}

	// The remote tier needs an endpoint
	if cfg.Memory.Backend == "remote" {
		if cfg.Memory.RemoteEndpoint == "" {
			return fmt.Errorf("memory.remote_endpoint is required when backend is 'remote'")
		}
		if cfg.Memory.RemoteTimeoutSeconds < 1 {
			return fmt.Errorf("memory.remote_timeout_seconds must be at least 1, got %d", cfg.Memory.RemoteTimeoutSeconds)
		}
	}

	// Validate graph settings
	if cfg.Graph.MaxHops < 1 {
		return fmt.Errorf("graph.max_hops must be at least 1, got %d", cfg.Graph.MaxHops)
	}
	if cfg.Graph.ContextCap < 1 {
		return fmt.Errorf("graph.context_cap must be at least 1, got %d", cfg.Graph.ContextCap)
	}

	// Validate pipeline settings
	if cfg.Pipeline.TopK < 1 {
		return fmt.Errorf("pipeline.top_k must be at least 1, got %d", cfg.Pipeline.TopK)
	}
	if cfg.Pipeline.BoostFactor < 1.0 {
		return fmt.Errorf("pipeline.boost_factor must be at least 1.0, got %f", cfg.Pipeline.BoostFactor)
	}
	if cfg.Pipeline.TokenBudget < 100 {
		return fmt.Errorf("pipeline.token_budget must be at least 100, got %d", cfg.Pipeline.TokenBudget)
	}

	// Validate server port
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	// Validate scheduler interval
	if cfg.Scheduler.Enabled && cfg.Scheduler.IntervalMinutes < 1 {
		return fmt.Errorf("scheduler.interval_minutes must be at least 1, got %d", cfg.Scheduler.IntervalMinutes)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, DefaultConfigDir)
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(homeDir, ".schematica/db/schematica.db"),
		},
		Memory: MemoryConfig{
			Backend:              "keyword",
			EmbeddingModel:       "text-embedding-3-small",
			EmbeddingDimensions:  1536,
			RemoteIndex:          "schematica-catalog",
			RemoteTimeoutSeconds: 5,
		},
		Graph: GraphConfig{
			MaxHops:    2,
			ContextCap: 20,
		},
		Pipeline: PipelineConfig{
			TopK:        10,
			BoostFactor: 1.2,
			TokenBudget: 2000,
		},
		Reasoner: ReasonerConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
		},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			IntervalMinutes: 60,
		},
	}
}
