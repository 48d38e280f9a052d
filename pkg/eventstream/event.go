package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/parchmentco/lore/pkg/memory"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAppended is emitted after a conversation turn is appended
	// to a topic's durable memory.
	EventTypeTurnAppended = "lore.turn.appended"
)

// TurnAppendedEvent is a transport-neutral event payload for an appended turn.
type TurnAppendedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Topic         string      `json:"topic"`
	Model         string      `json:"model"`
	Turn          memory.Turn `json:"turn"`
}

// NewTurnAppendedEvent builds a v1 event for a turn appended to topic.
func NewTurnAppendedEvent(topic, model string, turn memory.Turn) *TurnAppendedEvent {
	return &TurnAppendedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnAppended,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Topic:         topic,
		Model:         model,
		Turn:          turn,
	}
}
