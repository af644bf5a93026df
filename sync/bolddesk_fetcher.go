package sync

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// HTTPRequestTimeout is the default timeout for all HTTP requests to the BoldDesk API.
	HTTPRequestTimeout = 60 * time.Second

	// APIKeyHeader carries the BoldDesk API key on every request.
	APIKeyHeader = "x-api-key"

	// ProactiveRate throttles outbound requests (per second) below the
	// documented quota so a healthy sync rarely sees a 429 at all.
	ProactiveRate = 2.0
)

// SyncRequest describes one page fetch. Immutable per call; the pipeline
// regenerates it for each page with an updated Page.
type SyncRequest struct {
	BasePath string
	Filter   FilterParams
	// Page is 0 for the first page, which is requested without a Page
	// parameter.
	Page     int
	PageSize int
}

// SyncResponse is the parsed result of one page fetch.
type SyncResponse struct {
	Records    []gjson.Result
	TotalCount int64
	StatusCode int
	RateLimit  RateLimitState
	// Body holds the raw response body for non-OK statuses.
	Body string
}

// PageFetcher issues a single page request. The pipeline treats it as
// send(request) -> response; transport-level failures surface as errors
// with a zero StatusCode.
type PageFetcher interface {
	FetchPage(ctx context.Context, req SyncRequest) (SyncResponse, error)
}

// BoldDeskFetcher fetches pages from the BoldDesk REST API.
// It embeds *SyncContext for shared sync configuration.
type BoldDeskFetcher struct {
	*SyncContext
	limiter *rate.Limiter
}

func NewBoldDeskFetcher(sc *SyncContext) *BoldDeskFetcher {
	return &BoldDeskFetcher{
		SyncContext: sc,
		limiter:     rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// BoldDeskAPIBuilder returns a new requests.Builder configured for the
// BoldDesk API at the given path.
func (f *BoldDeskFetcher) BoldDeskAPIBuilder(path string) *requests.Builder {
	apiBuilder := requests.
		URL(f.Config.API.URL+path).
		Header(APIKeyHeader, f.Config.API.Key).
		Client(&http.Client{Timeout: HTTPRequestTimeout})
	if f.RecordRequests {
		apiBuilder = apiBuilder.Transport(requests.Record(nil, "testdata/.requests/bolddesk"))
	}
	if f.Transport != nil {
		apiBuilder = apiBuilder.Transport(f.Transport)
	}
	return apiBuilder
}

// FetchPage issues one page request and parses the standard BoldDesk
// response envelope: {"result":[...],"count":N}. Non-OK statuses are not
// errors here - the pipeline decides whether to retry or abort.
func (f *BoldDeskFetcher) FetchPage(ctx context.Context, req SyncRequest) (SyncResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return SyncResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	b := f.BoldDeskAPIBuilder(req.BasePath).
		Param("PerPage", strconv.Itoa(pageSize)).
		Param("RequiresCounts", "true")
	if req.Filter.OrderField != "" {
		b = b.Param("OrderBy", req.Filter.OrderField).
			Param("sort", req.Filter.OrderDirection)
	}
	if req.Filter.Query != "" {
		b = b.Param("Q", req.Filter.Query)
	}
	if req.Page > 1 {
		b = b.Param("Page", strconv.Itoa(req.Page))
	}

	var result SyncResponse
	var body string
	err := b.
		AddValidator(nil).
		Handle(func(res *http.Response) error {
			result.StatusCode = res.StatusCode
			result.RateLimit = ParseRateLimitState(res.Header)
			data, err := io.ReadAll(res.Body)
			if err != nil {
				return err
			}
			body = string(data)
			return nil
		}).
		Fetch(ctx)
	if err != nil {
		return result, err
	}

	if result.StatusCode != http.StatusOK {
		result.Body = body
		return result, nil
	}

	if !gjson.Valid(body) {
		log.Printf("Invalid BoldDesk Response:\n%s", body)
		return result, errors.New("invalid json response")
	}
	parsed := gjson.Parse(body)
	result.Records = parsed.Get("result").Array()
	result.TotalCount = parsed.Get("count").Int()
	return result, nil
}
