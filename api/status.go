package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/memory"
)

// statusForError maps a domain error onto an HTTP status. Backend
// availability problems surface as 503, deadline overruns as 504, and
// everything the server itself is responsible for as 500.
func statusForError(err error) int {
	if kind, ok := llm.KindOf(err); ok {
		switch kind {
		case llm.KindUnreachable, llm.KindUnsupported:
			return fiber.StatusServiceUnavailable
		case llm.KindTimedOut:
			return fiber.StatusGatewayTimeout
		case llm.KindMalformedResponse:
			return fiber.StatusInternalServerError
		}
	}

	if memory.IsNotFound(err) {
		return fiber.StatusNotFound
	}

	return fiber.StatusInternalServerError
}

// categoryForError names an error class for response payloads.
func categoryForError(err error) string {
	if kind, ok := llm.KindOf(err); ok {
		switch kind {
		case llm.KindUnreachable:
			return "unreachable"
		case llm.KindTimedOut:
			return "timed_out"
		case llm.KindMalformedResponse:
			return "malformed_response"
		case llm.KindUnsupported:
			return "unsupported"
		}
	}

	if memory.IsNotFound(err) {
		return "not_found"
	}

	return "internal"
}
