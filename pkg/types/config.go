package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "slr-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendConfig holds settings for the SLR backend API client.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the root URL of the backend (e.g. "http://localhost:8000").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is an optional bearer token sent with every request.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the workflow state store.
type StoreConfig struct {
	// DataDir is the directory for the embedded key-value database.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// InMemory opens the store without disk persistence. Used by tests.
	InMemory bool `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`

	// SyncWrites enables synchronous writes for durability (default true).
	SyncWrites bool `json:"sync_writes" yaml:"sync_writes"`

	// CacheTTL is how long loaded snapshots stay in the in-process cache
	// (default 5m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// CacheCleanup is the expired-entry sweep interval (default 10m).
	CacheCleanup time.Duration `json:"cache_cleanup" yaml:"cache_cleanup"`
}

// ArchiveConfig holds settings for the local paper archive.
type ArchiveConfig struct {
	// DataDir is the directory for the archive SQLite database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// GenerationConfig holds settings for AI-assisted generation steps.
type GenerationConfig struct {
	// Model is the model identifier sent with generation requests
	// (default "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// SearchStrategy selects the search-string strategy: "default" or "pico".
	SearchStrategy string `json:"search_strategy" yaml:"search_strategy"`
}

// EngineConfig groups all component configurations for the engine.
type EngineConfig struct {
	Backend    BackendConfig    `json:"backend" yaml:"backend"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
