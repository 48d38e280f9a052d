// Package agent implements the memory-backed conversational assistant. Each
// response is grounded in the topic's full stored history, and every
// completed exchange is appended back to the store before it is returned.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parchmentco/lore/pkg/eventstream"
	"github.com/parchmentco/lore/pkg/eventstream/nop"
	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/prompt"
)

// emptyHistoryContext stands in for the conversation history on a topic's
// first turn.
const emptyHistoryContext = "No prior conversation for this topic."

// Reply is one completed exchange: the turn that was appended and the
// topic's history including it.
type Reply struct {
	Turn    memory.Turn
	History []memory.Turn
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger for per-turn progress.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithPublisher sets the event publisher notified after each appended turn.
func WithPublisher(publisher eventstream.Publisher) Option {
	return func(a *Agent) {
		a.publisher = publisher
	}
}

// Agent answers within a topic using its durable conversation memory.
type Agent struct {
	store     memory.Store
	generator llm.Generator
	prompts   *prompt.Registry
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// NewAgent wires an agent over a memory store, a text generation backend,
// and a prompt registry holding the continue-conversation task.
func NewAgent(store memory.Store, generator llm.Generator, prompts *prompt.Registry, opts ...Option) *Agent {
	a := &Agent{
		store:     store,
		generator: generator,
		prompts:   prompts,
		publisher: nop.NewPublisher(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond generates a context-aware answer for userText within topic and
// appends the exchange to the topic's memory. If generation fails the store
// is left untouched. Event publication is best-effort: a failed publish is
// logged and never fails the exchange.
func (a *Agent) Respond(ctx context.Context, topic, model, userText string) (*Reply, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic is empty")
	}
	if strings.TrimSpace(userText) == "" {
		return nil, fmt.Errorf("user input is empty")
	}

	history, err := a.store.History(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("loading history for %q: %w", topic, err)
	}

	rendered, err := a.prompts.Render(prompt.TaskContinueConversation, map[string]string{
		"topic":          topic,
		"memory_context": historyContext(history),
		"user_input":     userText,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Info("generating response", "topic", topic, "model", model, "turns", len(history))

	aiText, err := a.generator.Generate(ctx, model, rendered)
	if err != nil {
		return nil, err
	}

	turn, err := a.store.Append(ctx, topic, userText, aiText)
	if err != nil {
		return nil, fmt.Errorf("appending turn to %q: %w", topic, err)
	}

	a.publish(ctx, topic, model, turn)

	return &Reply{
		Turn:    turn,
		History: append(history, turn),
	}, nil
}

func (a *Agent) publish(ctx context.Context, topic, model string, turn memory.Turn) {
	event := eventstream.NewTurnAppendedEvent(topic, model, turn)
	if err := a.publisher.PublishTurn(ctx, event); err != nil {
		a.logger.Warn("publishing turn event failed", "topic", topic, "seq", turn.Seq, "error", err)
	}
}

// historyContext renders stored turns the way the continue-conversation
// prompt expects them.
func historyContext(history []memory.Turn) string {
	if len(history) == 0 {
		return emptyHistoryContext
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAI: %s", turn.User, turn.AI))
	}

	return strings.Join(lines, "\n")
}
