// Package inmemory provides a non-durable memory.Store for tests and
// throwaway runs.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/parchmentco/lore/pkg/memory"
)

// Store implements memory.Store with a mutex-guarded map.
type Store struct {
	mu     sync.Mutex
	topics map[string][]memory.Turn
}

// NewStore creates an empty in-memory conversation store.
func NewStore() *Store {
	return &Store{topics: make(map[string][]memory.Turn)}
}

// Append implements memory.Store.
func (s *Store) Append(_ context.Context, topic, userText, aiText string) (memory.Turn, error) {
	if topic == "" {
		return memory.Turn{}, fmt.Errorf("topic name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn := memory.Turn{
		User: userText,
		AI:   aiText,
		Seq:  len(s.topics[topic]),
	}
	s.topics[topic] = append(s.topics[topic], turn)

	return turn, nil
}

// History implements memory.Store.
func (s *Store) History(_ context.Context, topic string) ([]memory.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.topics[topic]
	out := make([]memory.Turn, len(turns))
	copy(out, turns)

	return out, nil
}

// Topics implements memory.Store.
func (s *Store) Topics(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.topics))
	for name := range s.topics {
		names = append(names, name)
	}

	return names, nil
}

// Export implements memory.Store.
func (s *Store) Export(_ context.Context, topic string) (*memory.Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.topics[topic]
	if !ok {
		return nil, memory.ErrNotFound{Topic: topic}
	}

	out := make([]memory.Turn, len(turns))
	copy(out, turns)

	return &memory.Topic{Name: topic, Turns: out}, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
