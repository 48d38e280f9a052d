// Package api provides the HTTP server for research runs, memory-backed
// chat, and topic inspection.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// DefaultModel is used when a request does not name a model.
	DefaultModel string

	// AllowedModels is the model allow-list. A request naming a model
	// outside it is rejected before touching the backend.
	AllowedModels []string
}

// modelAllowed reports whether model passes the allow-list. An empty list
// allows everything.
func (c Config) modelAllowed(model string) bool {
	if len(c.AllowedModels) == 0 {
		return true
	}
	for _, allowed := range c.AllowedModels {
		if model == allowed {
			return true
		}
	}
	return false
}
