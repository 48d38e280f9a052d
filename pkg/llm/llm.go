// Package llm defines the inference gateway contract for the lore system.
//
// A Generator wraps exactly one blocking call to a text-generation backend.
// Calls can legitimately take minutes; callers bound them with a context
// deadline and decide for themselves whether to retry. The gateway never
// retries on its own and holds no state between calls.
package llm

import "context"

// Generator is the inference gateway. Implementations normalize transport
// failures into *Error values so callers can branch on ErrorKind.
type Generator interface {
	// Generate renders one completion for prompt using the named model.
	// Blocking; a single attempt; returns the generated text with
	// surrounding whitespace trimmed.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// Probe issues a minimal generation to verify the backend is reachable
	// and the model is loaded. Used to short-circuit multi-step pipelines
	// before any real work is queued.
	Probe(ctx context.Context, model string) error
}
