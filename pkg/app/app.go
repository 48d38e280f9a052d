// Package app assembles process-wide components from resolved configuration.
// Commands construct one Settings from viper and build the store, generator,
// searcher, and publisher from it, so every entrypoint wires the same way.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/parchmentco/lore/pkg/eventstream"
	"github.com/parchmentco/lore/pkg/eventstream/kafka"
	"github.com/parchmentco/lore/pkg/eventstream/nop"
	"github.com/parchmentco/lore/pkg/llm/ollama"
	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/memory/inmemory"
	"github.com/parchmentco/lore/pkg/memory/postgres"
	"github.com/parchmentco/lore/pkg/memory/sqlite"
	"github.com/parchmentco/lore/pkg/search"
)

// Storage provider names accepted in configuration.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageInMemory = "inmemory"
)

// Event publisher provider names accepted in configuration.
const (
	EventsNop   = "nop"
	EventsKafka = "kafka"
)

// sqliteFile is the default conversation store filename inside the .lore/
// directory.
const sqliteFile = "memory.db"

// Generation defaults for the research and analyze task families:
// deterministic output, a context window large enough for search results.
const (
	taskTemperature = 0.0
	taskNumCtx      = 4096
)

// conversationStops cut the model off before it begins inventing the user's
// next turn.
var conversationStops = []string{"User:", "AI:"}

// Settings is the resolved runtime configuration.
type Settings struct {
	OllamaBaseURL   string
	Model           string
	Timeout         time.Duration
	AllowedModels   []string
	StorageProvider string
	SQLitePath      string
	PostgresDSN     string
	Listen          string
	SearchEndpoint  string
	SearchAPIKey    string
	EventsProvider  string
	EventsBrokers   []string
	EventsTopic     string
}

// SettingsFromViper extracts Settings from a viper instance prepared by
// config.InitViper.
func SettingsFromViper(v *viper.Viper) Settings {
	return Settings{
		OllamaBaseURL:   v.GetString("ollama.base_url"),
		Model:           v.GetString("ollama.model"),
		Timeout:         time.Duration(v.GetUint("ollama.timeout_seconds")) * time.Second,
		AllowedModels:   v.GetStringSlice("models.allowed"),
		StorageProvider: v.GetString("storage.provider"),
		SQLitePath:      v.GetString("storage.sqlite_path"),
		PostgresDSN:     v.GetString("storage.postgres_dsn"),
		Listen:          v.GetString("api.listen"),
		SearchEndpoint:  v.GetString("search.endpoint"),
		SearchAPIKey:    v.GetString("search.api_key"),
		EventsProvider:  v.GetString("events.provider"),
		EventsBrokers:   v.GetStringSlice("events.brokers"),
		EventsTopic:     v.GetString("events.topic"),
	}
}

// OpenStore opens the configured conversation store. The context bounds
// connection setup for drivers that dial out; dotdirTarget anchors the
// default SQLite path when storage.sqlite_path is unset.
func (s Settings) OpenStore(ctx context.Context, dotdirTarget string) (memory.Store, error) {
	switch s.StorageProvider {
	case StorageInMemory:
		return inmemory.NewStore(), nil

	case StoragePostgres:
		if s.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.postgres_dsn is required for the postgres provider")
		}
		return postgres.NewStore(ctx, s.PostgresDSN)

	case StorageSQLite, "":
		path := s.SQLitePath
		if path == "" {
			path = filepath.Join(dotdirTarget, sqliteFile)
		}
		return sqlite.NewStore(path)

	default:
		return nil, fmt.Errorf("unknown storage provider %q", s.StorageProvider)
	}
}

// NewGenerator builds the inference client for one-shot task generation
// (research and analyze): deterministic, large context, no stop sequences.
func (s Settings) NewGenerator() *ollama.Client {
	temperature := taskTemperature
	numCtx := taskNumCtx

	return ollama.NewClient(ollama.Config{
		BaseURL:     s.OllamaBaseURL,
		Timeout:     s.Timeout,
		Temperature: &temperature,
		NumCtx:      &numCtx,
	})
}

// NewChatGenerator builds the inference client for conversational turns,
// with stop sequences that keep the model from speaking for the user.
func (s Settings) NewChatGenerator() *ollama.Client {
	temperature := taskTemperature
	numCtx := taskNumCtx

	return ollama.NewClient(ollama.Config{
		BaseURL:     s.OllamaBaseURL,
		Timeout:     s.Timeout,
		Temperature: &temperature,
		NumCtx:      &numCtx,
		Stop:        conversationStops,
	})
}

// NewSearcher builds the research pipeline's web search client.
func (s Settings) NewSearcher() *search.Client {
	return search.NewClient(search.Config{
		Endpoint: s.SearchEndpoint,
		APIKey:   s.SearchAPIKey,
	})
}

// NewPublisher builds the configured turn event publisher.
func (s Settings) NewPublisher() (eventstream.Publisher, error) {
	switch s.EventsProvider {
	case EventsKafka:
		return kafka.NewPublisher(kafka.Config{
			Brokers: s.EventsBrokers,
			Topic:   s.EventsTopic,
		})

	case EventsNop, "":
		return nop.NewPublisher(), nil

	default:
		return nil, fmt.Errorf("unknown events provider %q", s.EventsProvider)
	}
}
