// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Reasoner  ReasonerConfig  `mapstructure:"reasoner"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration (used with --http)
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Type        string `mapstructure:"type"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// MemoryConfig selects and configures the memory backend tier.
// The backend is a startup-time choice; switching tiers requires
// re-indexing the catalog.
type MemoryConfig struct {
	Backend string `mapstructure:"backend"` // "keyword", "vector" or "remote"

	// Vector tier settings (OpenAI-compatible embedding API)
	EmbeddingURL        string `mapstructure:"embedding_url"`
	EmbeddingModel      string `mapstructure:"embedding_model"`
	EmbeddingKey        string `mapstructure:"embedding_key"`
	EmbeddingDimensions int    `mapstructure:"embedding_dimensions"`

	// Remote tier settings (hosted hybrid search service)
	RemoteEndpoint       string `mapstructure:"remote_endpoint"`
	RemoteKey            string `mapstructure:"remote_key"`
	RemoteIndex          string `mapstructure:"remote_index"`
	RemoteTimeoutSeconds int    `mapstructure:"remote_timeout_seconds"`
}

// GraphConfig holds knowledge graph traversal settings
type GraphConfig struct {
	MaxHops    int `mapstructure:"max_hops"`
	ContextCap int `mapstructure:"context_cap"`
}

// PipelineConfig holds query pipeline tuning knobs
type PipelineConfig struct {
	TopK        int     `mapstructure:"top_k"`
	BoostFactor float64 `mapstructure:"boost_factor"`
	TokenBudget int     `mapstructure:"token_budget"`
}

// ReasonerConfig holds LLM reasoning settings; when URL is empty the
// deterministic stub reasoner is used.
type ReasonerConfig struct {
	URL            string `mapstructure:"url"`
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CatalogConfig points at the schematic catalog seed file
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig controls the background re-index job
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}
