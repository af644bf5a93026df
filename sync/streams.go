package sync

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// StreamDef describes one record type to replicate. Streams form a
// directed dependency graph via ChildOf, traversed depth-first at run
// start: each root stream runs fully, spawning child runs per emitted
// parent record.
type StreamDef struct {
	Name string
	// Path is the request path relative to the API base. Child paths carry
	// a {ticketId} placeholder resolved from the parent context.
	Path        string
	PrimaryKeys []string
	// ReplicationField is the record field used as the watermark source.
	// Empty for streams without incremental support.
	ReplicationField string
	// FilterMode is the stream's incremental capability: FilterIncremental
	// streams use the persisted watermark when one exists and fall back to
	// a full sync otherwise.
	FilterMode FilterMode
	ChildOf    string
	Shape      RecordShape
}

// HasReplicationKey reports whether the stream tracks a watermark.
func (s StreamDef) HasReplicationKey() bool {
	return s.ReplicationField != ""
}

// Streams returns the stream definitions in discovery order: tickets,
// then the messages stream fetched once per emitted ticket.
//
// Messages keep no watermark of their own: per-parent state would grow
// without bound, so a ticket's messages are re-fetched in full whenever
// the incremental filter revisits the ticket.
func Streams() []StreamDef {
	return []StreamDef{
		{
			Name:             "tickets",
			Path:             "/tickets",
			PrimaryKeys:      []string{"ticketId"},
			ReplicationField: "updatedOn",
			FilterMode:       FilterIncremental,
			Shape:            ticketShape(),
		},
		{
			Name:        "messages",
			Path:        "/{ticketId}/messages",
			PrimaryKeys: []string{"id"},
			ChildOf:     "tickets",
			FilterMode:  FilterNone,
			Shape:       messageShape(),
		},
	}
}

// ParentContext carries the fields a child request needs from its parent
// record. It lives for exactly the child runs spawned by that record and
// is never persisted.
type ParentContext struct {
	TicketID int64
}

// DeriveChildContext extracts the child request context from an emitted
// parent record.
func DeriveChildContext(record gjson.Result) (ParentContext, error) {
	id := record.Get("ticketId")
	if !id.Exists() || id.Value() == nil {
		return ParentContext{}, ErrMissingTicketID
	}
	return ParentContext{TicketID: id.Int()}, nil
}

// ExpandPath resolves the {ticketId} placeholder in a child stream path.
func ExpandPath(path string, parent ParentContext) string {
	return strings.ReplaceAll(path, "{ticketId}", strconv.FormatInt(parent.TicketID, 10))
}
