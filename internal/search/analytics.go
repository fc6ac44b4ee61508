package search

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ledgerKey = "dockhand.analytics"

	// Ledger list caps. Oldest entries are dropped first.
	maxZeroResultQueries = 50
	maxSearchSessions    = 200

	// minTrackedQueryLen: shorter queries are counted in the total but not
	// attributed to popularity or zero-result tracking.
	minTrackedQueryLen = 2
)

// ZeroResultQuery records one search that returned nothing.
type ZeroResultQuery struct {
	Query     string            `json:"query"`
	Timestamp time.Time         `json:"timestamp"`
	Operators map[string]string `json:"operators,omitempty"`
}

// SearchSession records one dispatched search.
type SearchSession struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerData is the persisted shape of the analytics ledger.
type LedgerData struct {
	TotalSearches     int               `json:"total_searches"`
	PopularQueries    map[string]int    `json:"popular_queries"`
	ZeroResultQueries []ZeroResultQuery `json:"zero_result_queries"`
	CategoryUsage     map[string]int    `json:"category_usage"`
	SearchSessions    []SearchSession   `json:"search_sessions"`
	OperatorUsage     map[string]int    `json:"operator_usage"`
	LastReset         time.Time         `json:"last_reset"`
}

func newLedgerData(now time.Time) LedgerData {
	return LedgerData{
		PopularQueries: make(map[string]int),
		CategoryUsage:  make(map[string]int),
		OperatorUsage:  make(map[string]int),
		LastReset:      now,
	}
}

// Ledger is the process-wide usage counter set. It is loaded once from
// storage, mutated on every search, and re-persisted after every mutation
// (last write wins; there is no cross-process merge).
type Ledger struct {
	mu     sync.Mutex
	data   LedgerData
	store  KV
	logger *slog.Logger
	now    func() time.Time
}

// OpenLedger loads the persisted ledger, treating a missing or corrupt blob
// as a fresh one.
func OpenLedger(store KV, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{store: store, logger: logger, now: time.Now}
	l.data = newLedgerData(l.now())

	if store == nil {
		return l
	}
	blob, ok, err := store.Get(ledgerKey)
	if err != nil || !ok {
		return l
	}
	var data LedgerData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		logger.Warn("discarding corrupt analytics ledger", "error", err)
		return l
	}
	if data.PopularQueries == nil {
		data.PopularQueries = make(map[string]int)
	}
	if data.CategoryUsage == nil {
		data.CategoryUsage = make(map[string]int)
	}
	if data.OperatorUsage == nil {
		data.OperatorUsage = make(map[string]int)
	}
	l.data = data
	return l
}

// Record updates the ledger for one dispatched search and re-persists it.
func (l *Ledger) Record(query string, resultCount int, ops map[string]string, category string) {
	l.mu.Lock()

	now := l.now()
	l.data.TotalSearches++

	q := normalizeQuery(query)
	if len([]rune(q)) >= minTrackedQueryLen {
		l.data.PopularQueries[q]++
		if resultCount == 0 {
			l.data.ZeroResultQueries = append(l.data.ZeroResultQueries, ZeroResultQuery{
				Query:     q,
				Timestamp: now,
				Operators: copyOps(ops),
			})
			if n := len(l.data.ZeroResultQueries); n > maxZeroResultQueries {
				l.data.ZeroResultQueries = l.data.ZeroResultQueries[n-maxZeroResultQueries:]
			}
		}
	}

	if category != "" {
		l.data.CategoryUsage[category]++
	}
	for key := range ops {
		l.data.OperatorUsage[key]++
	}

	l.data.SearchSessions = append(l.data.SearchSessions, SearchSession{
		ID:        uuid.NewString(),
		Query:     q,
		Results:   resultCount,
		Category:  category,
		Timestamp: now,
	})
	if n := len(l.data.SearchSessions); n > maxSearchSessions {
		l.data.SearchSessions = l.data.SearchSessions[n-maxSearchSessions:]
	}

	l.mu.Unlock()
	l.persist()
}

// Snapshot returns a deep copy of the current ledger contents.
func (l *Ledger) Snapshot() LedgerData {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.data
	out.PopularQueries = copyCounts(l.data.PopularQueries)
	out.CategoryUsage = copyCounts(l.data.CategoryUsage)
	out.OperatorUsage = copyCounts(l.data.OperatorUsage)
	out.ZeroResultQueries = append([]ZeroResultQuery(nil), l.data.ZeroResultQueries...)
	out.SearchSessions = append([]SearchSession(nil), l.data.SearchSessions...)
	return out
}

// Reset clears every counter and re-persists the empty ledger.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.data = newLedgerData(l.now())
	l.mu.Unlock()
	l.persist()
}

func (l *Ledger) persist() {
	if l.store == nil {
		return
	}
	l.mu.Lock()
	blob, err := json.Marshal(l.data)
	l.mu.Unlock()
	if err != nil {
		return
	}
	if err := l.store.Set(ledgerKey, string(blob)); err != nil {
		l.logger.Warn("persisting analytics ledger failed", "error", err)
	}
}

func normalizeQuery(q string) string {
	return ResultKey(q)
}

func copyOps(ops map[string]string) map[string]string {
	if len(ops) == 0 {
		return nil
	}
	out := make(map[string]string, len(ops))
	for k, v := range ops {
		out[k] = v
	}
	return out
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
