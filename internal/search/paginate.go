package search

import "sync"

// PageSize is the fixed backend page size for palette searches.
const PageSize = 20

// ScrollThreshold is how close to the bottom of the result list, in rendered
// rows, the scroll position must get before the next page is requested.
const ScrollThreshold = 8

// Paginator tracks the infinite-scroll cursor for one query: the highest
// loaded page, whether more pages exist, and a guard that admits at most one
// outstanding load at a time. The page index only increases; any query text
// change calls Reset.
type Paginator struct {
	mu      sync.Mutex
	page    int
	hasMore bool
	total   int
	known   bool
	loading bool
	pending int // page index of the outstanding load
}

// NewPaginator returns a paginator in its reset state.
func NewPaginator() *Paginator {
	return &Paginator{hasMore: true}
}

// Reset returns to {page 0, hasMore, no total, not loading}. Called whenever
// the raw query text changes.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = 0
	p.hasMore = true
	p.total = 0
	p.known = false
	p.loading = false
	p.pending = 0
}

// Seed records the outcome of the initial (page 0) search so subsequent
// BeginLoad calls continue from it.
func (p *Paginator) Seed(count, total int, totalKnown bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = 0
	p.loading = false
	p.total = total
	p.known = totalKnown
	if totalKnown {
		p.hasMore = PageSize < total
	} else {
		p.hasMore = count == PageSize
	}
}

// BeginLoad claims the next page. It returns false — and performs no state
// change — when a load is already in flight, no more pages exist, or the
// query is empty. On success the caller must finish with Complete or Fail.
func (p *Paginator) BeginLoad(query string) (nextPage, offset int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading || !p.hasMore || query == "" {
		return 0, 0, false
	}
	p.loading = true
	p.pending = p.page + 1
	return p.pending, p.pending * PageSize, true
}

// Complete records a successful page load. An empty page means the cursor is
// exhausted; otherwise hasMore follows the known total when the backend
// reported one, else the full-page heuristic.
func (p *Paginator) Complete(count, total int, totalKnown bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if count == 0 {
		p.hasMore = false
		return
	}
	p.page = p.pending
	if totalKnown {
		p.total = total
		p.known = true
		p.hasMore = (p.page+1)*PageSize < total
	} else {
		p.hasMore = count == PageSize
	}
}

// Fail clears the loading guard and leaves hasMore unchanged so the next
// scroll trigger can retry after a transient error.
func (p *Paginator) Fail() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
}

// Page returns the highest fully loaded page index.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// HasMore reports whether another page may exist.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a load is outstanding.
func (p *Paginator) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Total returns the backend-reported total and whether it is known.
func (p *Paginator) Total() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total, p.known
}

// NearBottom reports whether the scroll position is within threshold rows of
// the end of the content: contentLen - offset - viewHeight < threshold.
func NearBottom(contentLen, offset, viewHeight, threshold int) bool {
	return contentLen-offset-viewHeight < threshold
}
