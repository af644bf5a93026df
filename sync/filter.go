package sync

import (
	"fmt"
	"time"

	"github.com/tidwall/sjson"
)

const (
	// QueryTimestampFormat is the millisecond-precision UTC format BoldDesk
	// expects in Q filter expressions.
	QueryTimestampFormat = "2006-01-02T15:04:05.000Z"

	// Server-side filter fields. The API filters on lowercase field names
	// even though records carry camelCase keys.
	CreatedOnFilterField = "createdon"
	UpdatedOnFilterField = "updatedon"
)

// FilterMode selects how a stream bounds and orders its fetch.
type FilterMode int

const (
	// FilterNone issues no ordering or bound (child streams).
	FilterNone FilterMode = iota
	// FilterFull orders ascending by creation time, optionally bounded
	// below by the configured start date.
	FilterFull
	// FilterIncremental orders descending by last-modification time,
	// bounded below by the persisted watermark.
	FilterIncremental
)

// FilterParams are the ordering and bound parameters for one sync.
// Built once per sync, before the first page is requested.
type FilterParams struct {
	OrderField     string
	OrderDirection string
	Query          string // Q parameter, empty when no lower bound applies
}

// FilterBuilder derives FilterParams for a sync. StartDate is the optional
// global floor applied on initial (full) syncs, as an ISO date or date-time.
type FilterBuilder struct {
	StartDate string
}

// Build computes the request filter for the given mode. The watermark is
// only consulted in incremental mode, where the lower bound is inclusive:
// records at the watermark may be re-delivered and downstream consumers
// must tolerate at-least-once delivery across run boundaries.
func (b FilterBuilder) Build(mode FilterMode, watermark time.Time) (FilterParams, error) {
	switch mode {
	case FilterFull:
		params := FilterParams{OrderField: CreatedOnFilterField, OrderDirection: "asc"}
		if b.StartDate != "" {
			query, err := fromQuery(CreatedOnFilterField, b.StartDate)
			if err != nil {
				return params, err
			}
			params.Query = query
		}
		return params, nil
	case FilterIncremental:
		params := FilterParams{OrderField: UpdatedOnFilterField, OrderDirection: "desc"}
		query, err := fromQuery(UpdatedOnFilterField, watermark.UTC().Format(QueryTimestampFormat))
		if err != nil {
			return params, err
		}
		params.Query = query
		return params, nil
	}
	return FilterParams{}, nil
}

// fromQuery builds a BoldDesk Q expression: field:{"from":"<bound>"}.
func fromQuery(field string, from string) (string, error) {
	bound, err := sjson.Set("{}", "from", from)
	if err != nil {
		return "", fmt.Errorf("failed to build %s filter %w", field, err)
	}
	return field + ":" + bound, nil
}
