// Package ollama
package ollama

import "time"

// generateRequest is the body for Ollama's /api/generate endpoint.
// Streaming is always disabled; the gateway contract is one blocking call.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

// generateOptions carries the subset of Ollama sampling options lore sets.
type generateOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumCtx      *int     `json:"num_ctx,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is Ollama's non-streaming /api/generate reply.
// Response is a pointer so a missing field is distinguishable from an empty
// completion; absence means the reply is malformed.
type generateResponse struct {
	Model              string    `json:"model"`
	CreatedAt          time.Time `json:"created_at"`
	Response           *string   `json:"response"`
	Done               bool      `json:"done"`
	DoneReason         string    `json:"done_reason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty"`
	LoadDuration       int64     `json:"load_duration,omitempty"`
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty"`
	EvalCount          int       `json:"eval_count,omitempty"`
	EvalDuration       int64     `json:"eval_duration,omitempty"`
}

// errorResponse is Ollama's error reply shape, e.g.
// {"error": "model 'nope' not found, try pulling it first"}.
type errorResponse struct {
	Error string `json:"error"`
}
