// Package memory provides the durable per-topic conversation store.
//
// A topic is created implicitly by its first appended turn and only ever
// grows. Turn order within a topic is insertion order; sequence indexes are
// assigned by the store and never reused. Every successful Append is durably
// committed before it returns: a crash immediately afterwards must not lose
// the turn.
//
// Drivers are pluggable via configuration:
//
//	[storage]
//	provider = "sqlite"   # or "postgres", "inmemory"
package memory

import "context"

// Turn is one user/AI exchange. Immutable once created; both sides exist
// together or the turn does not exist at all.
type Turn struct {
	// User is the user-supplied text that opened the exchange.
	User string `json:"user"`

	// AI is the model's reply.
	AI string `json:"ai"`

	// Seq is the turn's position within its topic, starting at 0.
	Seq int `json:"seq"`
}

// Topic is a named, append-only sequence of turns. This is also the export
// shape: {name, turns: [{user, ai, seq}, ...]}.
type Topic struct {
	Name  string `json:"name"`
	Turns []Turn `json:"turns"`
}

// Store is the conversation store contract. Concurrent Append calls to the
// same topic must be serialized by the implementation; a coarse store-wide
// lock is acceptable at expected load.
type Store interface {
	// Append adds a turn to the named topic, creating the topic if needed.
	// The returned Turn carries the assigned sequence index. Fails with
	// ErrUnavailable when the durable medium cannot commit.
	Append(ctx context.Context, topic, userText, aiText string) (Turn, error)

	// History returns the topic's turns oldest first. An unknown topic
	// yields an empty slice, not an error.
	History(ctx context.Context, topic string) ([]Turn, error)

	// Topics returns all topic names. Order is not significant.
	Topics(ctx context.Context) ([]string, error)

	// Export returns the full topic record, failing with ErrNotFound for
	// unknown topics.
	Export(ctx context.Context, topic string) (*Topic, error)

	// Close releases the store's resources.
	Close() error
}
