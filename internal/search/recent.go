package search

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

const (
	recentKey = "dockhand.recent_searches"

	// maxRecentSearches caps the persisted history.
	maxRecentSearches = 10
)

// RecentSearches is the persisted, most-recent-first search history shown as
// default palette content while the query is empty.
type RecentSearches struct {
	mu     sync.Mutex
	items  []string
	store  KV
	logger *slog.Logger
}

// OpenRecentSearches loads the persisted history; a missing or corrupt blob
// yields an empty one.
func OpenRecentSearches(store KV, logger *slog.Logger) *RecentSearches {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RecentSearches{store: store, logger: logger}
	if store == nil {
		return r
	}
	blob, ok, err := store.Get(recentKey)
	if err != nil || !ok {
		return r
	}
	var items []string
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		logger.Warn("discarding corrupt recent searches", "error", err)
		return r
	}
	if len(items) > maxRecentSearches {
		items = items[:maxRecentSearches]
	}
	r.items = items
	return r
}

// Items returns the history, most recent first.
func (r *RecentSearches) Items() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

// Add moves query to the front, de-duplicating and trimming to the cap, then
// re-persists. Blank queries are ignored.
func (r *RecentSearches) Add(query string) {
	q := strings.TrimSpace(query)
	if q == "" {
		return
	}

	r.mu.Lock()
	next := make([]string, 0, maxRecentSearches)
	next = append(next, q)
	for _, it := range r.items {
		if strings.EqualFold(it, q) {
			continue
		}
		next = append(next, it)
		if len(next) == maxRecentSearches {
			break
		}
	}
	r.items = next
	blob, err := json.Marshal(r.items)
	r.mu.Unlock()

	if err != nil || r.store == nil {
		return
	}
	if err := r.store.Set(recentKey, string(blob)); err != nil {
		r.logger.Warn("persisting recent searches failed", "error", err)
	}
}

// Clear empties the history and removes the persisted blob.
func (r *RecentSearches) Clear() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
	if r.store != nil {
		_ = r.store.Delete(recentKey)
	}
}
