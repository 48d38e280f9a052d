package config

const (
	defaultOllamaBaseURL  = "http://localhost:11434"
	defaultOllamaModel    = "llama3:latest"
	defaultTimeoutSeconds = 600

	defaultStorageProvider = "sqlite"

	defaultAPIListen = ":8080"

	defaultSearchEndpoint = "https://serpapi.com/search"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "lore.turns"
)

// defaultAllowedModels is the out-of-the-box model allow-list. Operators are
// expected to replace it with whatever their backend has pulled.
var defaultAllowedModels = []string{
	"llama3:latest",
	"mistral:latest",
	"qwen3:4b",
	"deepseek-r1:1.5b",
}

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Ollama: OllamaConfig{
			BaseURL:        defaultOllamaBaseURL,
			Model:          defaultOllamaModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Models: ModelsConfig{
			Allowed: append([]string(nil), defaultAllowedModels...),
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Search: SearchConfig{
			Endpoint: defaultSearchEndpoint,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
