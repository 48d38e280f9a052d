package memory

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a topic doesn't exist in the store.
type ErrNotFound struct {
	Topic string
}

func (e ErrNotFound) Error() string {
	if e.Topic == "" {
		return "topic not found"
	}

	return "topic not found: " + e.Topic
}

// ErrUnavailable is returned when the store's durable medium cannot be
// reached or cannot commit.
type ErrUnavailable struct {
	Err error
}

func (e ErrUnavailable) Error() string {
	if e.Err == nil {
		return "conversation store unavailable"
	}

	return fmt.Sprintf("conversation store unavailable: %v", e.Err)
}

func (e ErrUnavailable) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is (or wraps) an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err is (or wraps) an ErrUnavailable.
func IsUnavailable(err error) bool {
	var ua ErrUnavailable
	return errors.As(err, &ua)
}
