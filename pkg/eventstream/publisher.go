// Package eventstream defines the turn event payload and the publisher
// contract its backends implement. Publishing is best-effort: a failed
// publish never rolls back the turn it describes.
package eventstream

import "context"

// Publisher publishes turn events to an event stream backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnAppendedEvent) error
	Close() error
}
