package sync

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Engine replicates each stream in discovery order: one outstanding
// request at a time, parents depth-first before their children. A single
// Engine owns its cursors and watermark candidates; it is not safe for
// concurrent use.
type Engine struct {
	Fetcher PageFetcher
	State   StateStore
	Writer  RecordWriter
	Backoff BackoffPolicy
	Streams []StreamDef

	// StartDate is the optional global floor applied on full syncs.
	StartDate string

	// ForceFull ignores persisted watermarks and re-syncs from StartDate.
	ForceFull bool

	// RunID correlates log lines from one run.
	RunID string

	// sleep is overridable in tests; defaults to a context-aware wait.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewEngine(fetcher PageFetcher, state StateStore, writer RecordWriter, startDate string) *Engine {
	return &Engine{
		Fetcher:   fetcher,
		State:     state,
		Writer:    writer,
		Backoff:   NewBackoffPolicy(),
		Streams:   Streams(),
		StartDate: startDate,
		RunID:     uuid.New().String(),
	}
}

// Run syncs every root stream, interleaving child streams per emitted
// parent record. The first error aborts the run; persisted state reflects
// only streams fully synced before the failure.
func (e *Engine) Run(ctx context.Context) error {
	byName := make(map[string]StreamDef, len(e.Streams))
	for _, s := range e.Streams {
		byName[s.Name] = s
	}
	for _, s := range e.Streams {
		if s.ChildOf == "" {
			continue
		}
		if _, ok := byName[s.ChildOf]; !ok {
			return fmt.Errorf("%w: %s -> %s", ErrUnknownParentStream, s.Name, s.ChildOf)
		}
	}

	log.Printf("Starting sync run %s", e.RunID)
	for _, stream := range e.Streams {
		if stream.ChildOf != "" {
			continue // child streams run per parent record
		}
		if err := e.syncStream(ctx, stream); err != nil {
			return fmt.Errorf("stream %s: %w", stream.Name, err)
		}
	}
	log.Printf("Finished sync run %s", e.RunID)
	return nil
}

// syncStream replicates one root stream. The watermark candidate is
// advanced per fully emitted page and durably persisted only once the
// cursor is exhausted: the incremental fetch runs in descending order, so
// persisting the run maximum any earlier could lose the unread tail after
// a crash.
func (e *Engine) syncStream(ctx context.Context, stream StreamDef) error {
	filter, watermark, err := e.streamFilter(stream)
	if err != nil {
		return err
	}
	log.Printf("Syncing stream %s (order %s %s)", stream.Name, filter.OrderField, filter.OrderDirection)

	cursor := NewPageCursor()
	candidate := watermark
	emitted := 0
	page := 0
	for {
		resp, err := e.fetchWithRetry(ctx, SyncRequest{
			BasePath: stream.Path,
			Filter:   filter,
			Page:     page,
			PageSize: DefaultPageSize,
		})
		if err != nil {
			return err
		}

		pageMax, err := e.emitPage(ctx, stream, resp.Records)
		if err != nil {
			return err
		}
		if pageMax.After(candidate) {
			candidate = pageMax
		}
		emitted += len(resp.Records)

		next, ok := cursor.Next(resp.TotalCount)
		if !ok {
			break
		}
		page = next
	}

	if stream.HasReplicationKey() && candidate.After(watermark) {
		if err := e.State.SetWatermark(stream, candidate); err != nil {
			return fmt.Errorf("failed to checkpoint watermark %w", err)
		}
	}
	log.Printf("Finished stream %s: emitted %d records", stream.Name, emitted)
	return nil
}

// streamFilter decides full vs incremental for this run and returns the
// request filter plus the prior watermark (zero when none).
func (e *Engine) streamFilter(stream StreamDef) (FilterParams, time.Time, error) {
	if stream.FilterMode == FilterNone || !stream.HasReplicationKey() {
		return FilterParams{}, time.Time{}, nil
	}
	builder := FilterBuilder{StartDate: e.StartDate}
	if !e.ForceFull {
		watermark, ok, err := e.State.Watermark(stream)
		if err != nil {
			return FilterParams{}, time.Time{}, err
		}
		if ok {
			params, err := builder.Build(FilterIncremental, watermark)
			return params, watermark, err
		}
	}
	params, err := builder.Build(FilterFull, time.Time{})
	return params, time.Time{}, err
}

// emitPage shapes and writes one page of records in response order,
// spawning child stream runs per record, and returns the maximum
// replication key value seen on the page.
func (e *Engine) emitPage(ctx context.Context, stream StreamDef, records []gjson.Result) (time.Time, error) {
	var pageMax time.Time
	for _, raw := range records {
		record, err := stream.Shape.Shape(raw)
		if err != nil {
			return pageMax, err
		}
		if err := e.Writer.WriteRecord(stream.Name, record); err != nil {
			return pageMax, err
		}

		if stream.HasReplicationKey() {
			if ts := raw.Get(stream.ReplicationField); ts.Exists() {
				value, err := time.Parse(time.RFC3339, ts.String())
				if err != nil {
					log.Printf("Warning: unparsable %s value %q on stream %s, watermark not advanced for this record",
						stream.ReplicationField, ts.String(), stream.Name)
				} else if value.After(pageMax) {
					pageMax = value
				}
			}
		}

		for _, child := range e.childStreams(stream.Name) {
			parent, err := DeriveChildContext(raw)
			if err != nil {
				return pageMax, err
			}
			if err := e.syncChildStream(ctx, child, parent); err != nil {
				return pageMax, fmt.Errorf("stream %s (ticket %d): %w", child.Name, parent.TicketID, err)
			}
		}
	}
	return pageMax, nil
}

// syncChildStream replicates one child stream for a single parent record.
// Pagination and rate limit handling are identical to the parent's; there
// is no per-parent watermark.
func (e *Engine) syncChildStream(ctx context.Context, stream StreamDef, parent ParentContext) error {
	cursor := NewPageCursor()
	page := 0
	for {
		resp, err := e.fetchWithRetry(ctx, SyncRequest{
			BasePath: ExpandPath(stream.Path, parent),
			Page:     page,
			PageSize: DefaultPageSize,
		})
		if err != nil {
			return err
		}

		for _, raw := range resp.Records {
			record, err := stream.Shape.Shape(raw)
			if err != nil {
				return err
			}
			if !gjson.Get(record, "ticketId").Exists() {
				if record, err = sjson.Set(record, "ticketId", parent.TicketID); err != nil {
					return fmt.Errorf("failed to set ticketId %w", err)
				}
			}
			if err := e.Writer.WriteRecord(stream.Name, record); err != nil {
				return err
			}
		}

		next, ok := cursor.Next(resp.TotalCount)
		if !ok {
			return nil
		}
		page = next
	}
}

func (e *Engine) childStreams(parent string) []StreamDef {
	var result []StreamDef
	for _, s := range e.Streams {
		if s.ChildOf == parent {
			result = append(result, s)
		}
	}
	return result
}

// fetchWithRetry issues one page request, recovering from rate limiting
// and transient transport failures within the retry budget. Any other
// HTTP status aborts immediately.
func (e *Engine) fetchWithRetry(ctx context.Context, req SyncRequest) (SyncResponse, error) {
	for attempt := 1; attempt <= MaxFetchAttempts; attempt++ {
		resp, err := e.Fetcher.FetchPage(ctx, req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return resp, ctx.Err()
			}
			// Transient transport failure: no reset time is available, so
			// use the generic schedule.
			log.Printf("BoldDesk request failed (attempt %d of %d): %v", attempt, MaxFetchAttempts, err)
			if attempt == MaxFetchAttempts {
				return resp, fmt.Errorf("request failed after %d attempts %w", MaxFetchAttempts, err)
			}
			if err := e.wait(ctx, FallbackDelay(attempt)); err != nil {
				return resp, err
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := e.Backoff.DelayBeforeRetry(resp.RateLimit)
			if delay == 0 {
				delay = FallbackDelay(attempt)
			}
			if attempt == MaxFetchAttempts {
				return resp, ErrRateLimitExhausted
			}
			log.Printf("BoldDesk rate limited, retrying in %s (attempt %d of %d)", delay, attempt, MaxFetchAttempts)
			if err := e.wait(ctx, delay); err != nil {
				return resp, err
			}

		case resp.StatusCode != http.StatusOK:
			return resp, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}

		default:
			return resp, nil
		}
	}
	return SyncResponse{}, ErrRateLimitExhausted
}

func (e *Engine) wait(ctx context.Context, d time.Duration) error {
	if e.sleep != nil {
		return e.sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
