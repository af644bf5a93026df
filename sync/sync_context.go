package sync

import "net/http"

// SyncContext holds shared sync configuration and run metadata.
// It is immutable after construction.
type SyncContext struct {
	Config         Config
	RecordRequests bool

	// Transport overrides the HTTP transport when set. Tests use it to
	// replay canned responses.
	Transport http.RoundTripper
}
