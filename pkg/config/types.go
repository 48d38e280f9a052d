package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent lore configuration stored as config.toml
// in the .lore/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Ollama  OllamaConfig  `toml:"ollama"`
	Models  ModelsConfig  `toml:"models"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Search  SearchConfig  `toml:"search"`
	Events  EventsConfig  `toml:"events"`
}

// OllamaConfig holds inference backend settings.
type OllamaConfig struct {
	// BaseURL is the Ollama-compatible server URL (scheme + host + port).
	BaseURL string `toml:"base_url,omitempty"`

	// Model is the default model used when a request does not name one.
	Model string `toml:"model,omitempty"`

	// TimeoutSeconds bounds a single generate call. Generation can
	// legitimately take minutes on large models, so the default is generous.
	TimeoutSeconds uint `toml:"timeout_seconds,omitempty"`
}

// ModelsConfig holds the model allow-list used to validate request input.
// The list lives in config rather than code so operators can align it with
// whatever models their backend actually has pulled.
type ModelsConfig struct {
	Allowed []string `toml:"allowed,omitempty"`
}

// StorageConfig holds conversation store settings.
type StorageConfig struct {
	// Provider selects the store backend: "sqlite", "postgres", or "inmemory".
	Provider string `toml:"provider,omitempty"`

	// SQLitePath is the SQLite database path. Empty means
	// <dotdir>/memory.db resolved at startup.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// PostgresDSN is a pgx-compatible connection string.
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// SearchConfig holds web search settings for the research pipeline.
type SearchConfig struct {
	// Endpoint is the SerpApi-compatible JSON search endpoint.
	Endpoint string `toml:"endpoint,omitempty"`

	// APIKey authenticates against the search provider. The research
	// pipeline's search step fails without one.
	APIKey string `toml:"api_key,omitempty"`
}

// EventsConfig holds turn-event publishing settings.
type EventsConfig struct {
	// Provider selects the publisher backend: "nop" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is the Kafka broker list for the kafka provider.
	Brokers []string `toml:"brokers,omitempty"`

	// Topic is the Kafka topic turn events are written to.
	Topic string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// List-valued keys round-trip through comma-separated strings.
var configKeys = map[string]configKeyInfo{
	"ollama.base_url": {
		get: func(c *Config) string { return c.Ollama.BaseURL },
		set: func(c *Config, v string) error { c.Ollama.BaseURL = v; return nil },
	},
	"ollama.model": {
		get: func(c *Config) string { return c.Ollama.Model },
		set: func(c *Config, v string) error { c.Ollama.Model = v; return nil },
	},
	"ollama.timeout_seconds": {
		get: func(c *Config) string {
			if c.Ollama.TimeoutSeconds == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Ollama.TimeoutSeconds), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for ollama.timeout_seconds: %w", err)
			}
			c.Ollama.TimeoutSeconds = uint(n)
			return nil
		},
	},
	"models.allowed": {
		get: func(c *Config) string { return strings.Join(c.Models.Allowed, ",") },
		set: func(c *Config, v string) error {
			c.Models.Allowed = splitList(v)
			return nil
		},
	},
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"search.endpoint": {
		get: func(c *Config) string { return c.Search.Endpoint },
		set: func(c *Config, v string) error { c.Search.Endpoint = v; return nil },
	},
	"search.api_key": {
		get: func(c *Config) string { return c.Search.APIKey },
		set: func(c *Config, v string) error { c.Search.APIKey = v; return nil },
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitList(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// splitList splits a comma-separated value into trimmed non-empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
