package sync

// DefaultPageSize is the fixed page size requested from the BoldDesk API.
const DefaultPageSize = 100

// PageCursor tracks pagination position for a single request sequence.
// It is owned by exactly one sync invocation and never rewinds.
type PageCursor struct {
	current  int
	pageSize int
}

// NewPageCursor returns a cursor positioned on the first page. The first
// request is issued without a Page parameter, which the API treats as page 1.
func NewPageCursor() *PageCursor {
	return &PageCursor{current: 1, pageSize: DefaultPageSize}
}

// Page returns the page number of the most recently requested page.
func (c *PageCursor) Page() int {
	return c.current
}

// TotalPages returns how many pages cover totalCount records.
func (c *PageCursor) TotalPages(totalCount int64) int {
	if totalCount <= 0 {
		return 0
	}
	return int((totalCount + int64(c.pageSize) - 1) / int64(c.pageSize))
}

// Next advances the cursor using the total record count reported by the
// last response. It returns the next page number to request, or false when
// the sequence is exhausted. Page numbers are strictly increasing - a page
// is never revisited and never exceeds TotalPages.
func (c *PageCursor) Next(totalCount int64) (int, bool) {
	if c.current >= c.TotalPages(totalCount) {
		return 0, false
	}
	c.current++
	return c.current, true
}
