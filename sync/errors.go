package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExhausted is returned when a page is still rate limited
	// after the full retry budget has been spent. State reflects only pages
	// fully committed before the failure.
	ErrRateLimitExhausted = errors.New("bolddesk: rate limit retries exhausted")

	// ErrMissingTicketID is returned when a ticket record carries no
	// ticketId to derive a child context from.
	ErrMissingTicketID = errors.New("bolddesk: ticket record is missing ticketId")

	// ErrUnknownParentStream is returned when a child stream references a
	// parent that is not defined.
	ErrUnknownParentStream = errors.New("bolddesk: child stream references an unknown parent")
)

// APIError is a non-tolerated HTTP status from the BoldDesk API.
// It is never retried and aborts the current sync immediately.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bolddesk: API error %d: %s", e.StatusCode, e.Body)
}
