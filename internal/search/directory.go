package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// seedTerms are the fixed generic queries used to bulk-discover page entries
// from the backend on palette open.
var seedTerms = []string{"dashboard", "project", "service", "settings", "deploy"}

const (
	// seedLimit caps each seed-term search.
	seedLimit = 10

	// snapshotKey is the storage key for the persisted pages snapshot.
	snapshotKey = "dockhand.pages_snapshot"

	// snapshotMaxAge is how old a persisted snapshot may be and still be
	// adopted when the live seed searches fail.
	snapshotMaxAge = time.Hour
)

// pagesSnapshot is the persisted form of a live-resolved directory.
type pagesSnapshot struct {
	Pages    []Hit     `json:"pages"`
	CachedAt time.Time `json:"cached_at"`
}

// Resolver maintains the navigable pages directory through the fallback
// chain: live seed searches, then the persisted snapshot if under an hour
// old, then the compiled-in static list. Resolution runs once per palette
// lifetime; dynamically registered entries are merged in on every read.
type Resolver struct {
	backend  Backend
	store    KV
	registry Registry
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	loaded   bool
	pages    []Hit
	dynamic  []Hit
	unsub    func()
	resolved string // which chain link produced pages: live, snapshot, static
}

// NewResolver creates a directory resolver. registry may be nil when no
// dynamic source exists.
func NewResolver(backend Backend, store KV, registry Registry, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		backend:  backend,
		store:    store,
		registry: registry,
		logger:   logger,
		now:      time.Now,
		pages:    StaticPages(),
		resolved: "static",
	}
	if registry != nil {
		r.unsub = registry.Subscribe(func(items []Hit) {
			r.mu.Lock()
			r.dynamic = items
			r.mu.Unlock()
		})
	}
	return r
}

// Close unsubscribes from the dynamic registry.
func (r *Resolver) Close() {
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
}

// Entries returns the current directory: resolved pages followed by
// dynamically registered entries, de-duplicated by (type, entity_id).
func (r *Resolver) Entries() []Hit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Hit, 0, len(r.pages)+len(r.dynamic))
	seen := make(map[string]struct{}, cap(out))
	for _, h := range r.pages {
		if _, dup := seen[h.Key()]; dup {
			continue
		}
		seen[h.Key()] = struct{}{}
		out = append(out, h)
	}
	for _, h := range r.dynamic {
		if _, dup := seen[h.Key()]; dup {
			continue
		}
		seen[h.Key()] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Source reports which chain link the current pages came from.
func (r *Resolver) Source() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved
}

// Resolve populates the pages directory once. Subsequent calls are no-ops
// for the resolver's lifetime, whether the first attempt succeeded or
// exhausted the chain.
func (r *Resolver) Resolve(ctx context.Context) {
	r.mu.Lock()
	if r.loaded {
		r.mu.Unlock()
		return
	}
	r.loaded = true
	r.mu.Unlock()

	merged, failed := r.seedSearch(ctx)

	switch {
	case len(merged) > 0:
		r.adopt(merged, "live")
		r.persistSnapshot(merged)
	case failed:
		if snap, ok := r.loadSnapshot(); ok {
			r.adopt(snap, "snapshot")
			return
		}
		r.adopt(StaticPages(), "static")
	default:
		// Backend reachable but knows no pages; the static list is
		// authoritative enough.
		r.adopt(StaticPages(), "static")
	}
}

// seedSearch runs every seed-term search and merges hits by entity_id.
// failed is true when at least one seed search errored.
func (r *Resolver) seedSearch(ctx context.Context) (merged []Hit, failed bool) {
	byEntity := make(map[string]struct{})
	for _, term := range seedTerms {
		page, err := r.backend.Search(ctx, term, Query{Type: TypePage, Limit: seedLimit})
		if err != nil {
			r.logger.Debug("directory seed search failed", "term", term, "error", err)
			failed = true
			continue
		}
		for _, h := range page.Hits {
			if _, dup := byEntity[h.EntityID]; dup {
				continue
			}
			byEntity[h.EntityID] = struct{}{}
			merged = append(merged, h)
		}
	}
	return merged, failed
}

func (r *Resolver) adopt(pages []Hit, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = pages
	r.resolved = source
}

func (r *Resolver) persistSnapshot(pages []Hit) {
	if r.store == nil {
		return
	}
	blob, err := json.Marshal(pagesSnapshot{Pages: pages, CachedAt: r.now()})
	if err != nil {
		return
	}
	if err := r.store.Set(snapshotKey, string(blob)); err != nil {
		r.logger.Warn("persisting pages snapshot failed", "error", err)
	}
}

// loadSnapshot reads the persisted snapshot, rejecting missing, malformed,
// empty or stale ones. Malformed blobs are discarded.
func (r *Resolver) loadSnapshot() ([]Hit, bool) {
	if r.store == nil {
		return nil, false
	}
	blob, ok, err := r.store.Get(snapshotKey)
	if err != nil || !ok {
		return nil, false
	}
	var snap pagesSnapshot
	if err := json.Unmarshal([]byte(blob), &snap); err != nil {
		r.logger.Warn("discarding corrupt pages snapshot", "error", err)
		_ = r.store.Delete(snapshotKey)
		return nil, false
	}
	if len(snap.Pages) == 0 || r.now().Sub(snap.CachedAt) >= snapshotMaxAge {
		return nil, false
	}
	return snap.Pages, true
}
