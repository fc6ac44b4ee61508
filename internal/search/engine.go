package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Result is the outcome of one search cycle.
type Result struct {
	Hits       []Hit // merged, operator-filtered, de-duplicated
	RawHits    []Hit // unfiltered backend hits, as cached
	Total      int
	TotalKnown bool
	TookMs     int64
	FromCache  bool
}

// Engine runs search cycles: operator parse, result-cache consult, backend
// call on miss, directory merge, ledger update. It is shared by the palette
// and the one-shot CLI search.
type Engine struct {
	backend   Backend
	results   *TTLCache[[]Hit]
	suggests  *TTLCache[[]Suggestion]
	directory *Resolver
	ledger    *Ledger
	recent    *RecentSearches
	logger    *slog.Logger
}

// EngineConfig wires the engine's collaborators. Backend is required; nil
// optional fields get working defaults (in-memory caches, no persistence).
type EngineConfig struct {
	Backend   Backend
	Directory *Resolver
	Ledger    *Ledger
	Recent    *RecentSearches
	Logger    *slog.Logger
}

// NewEngine builds an engine from the given collaborators.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Backend == nil {
		return nil, errors.New("engine requires a backend")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	directory := cfg.Directory
	if directory == nil {
		directory = NewResolver(cfg.Backend, nil, nil, logger)
	}
	ledger := cfg.Ledger
	if ledger == nil {
		ledger = OpenLedger(nil, logger)
	}
	recent := cfg.Recent
	if recent == nil {
		recent = OpenRecentSearches(nil, logger)
	}
	return &Engine{
		backend:   cfg.Backend,
		results:   NewResultCache(),
		suggests:  NewSuggestCache(),
		directory: directory,
		ledger:    ledger,
		recent:    recent,
		logger:    logger,
	}, nil
}

// Directory exposes the engine's directory resolver.
func (e *Engine) Directory() *Resolver { return e.directory }

// Ledger exposes the engine's analytics ledger.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// Recent exposes the engine's recent-search history.
func (e *Engine) Recent() *RecentSearches { return e.recent }

// Search runs one full cycle for the raw query: parse operators, serve the
// unfiltered backend hits from cache or the network, merge with directory
// matches, record analytics. category is the active palette filter, recorded
// in the ledger and applied as a type operator when no explicit one is set.
func (e *Engine) Search(ctx context.Context, rawQuery, category string) (Result, error) {
	parsed := ParseOperators(rawQuery)
	ops := applyCategory(parsed.Operators, category)

	raw, res, err := e.fetchRaw(ctx, rawQuery, parsed.Clean)
	if err != nil {
		return Result{}, err
	}

	e.directory.Resolve(ctx)
	res.RawHits = raw
	res.Hits = Aggregate(parsed.Clean, ops, raw, e.directory.Entries())

	e.ledger.Record(rawQuery, len(res.Hits), parsed.Operators, category)
	e.recent.Add(rawQuery)
	return res, nil
}

// Refilter re-applies operator and category filtering to previously fetched
// raw hits without touching the network, for category-tab changes.
func (e *Engine) Refilter(rawQuery, category string, raw []Hit) []Hit {
	parsed := ParseOperators(rawQuery)
	ops := applyCategory(parsed.Operators, category)
	return Aggregate(parsed.Clean, ops, raw, e.directory.Entries())
}

// applyCategory overlays the active category filter as a type operator
// unless the query already carries an explicit one.
func applyCategory(ops map[string]string, category string) map[string]string {
	if category == "" {
		return ops
	}
	if _, explicit := ops[OpType]; explicit {
		return ops
	}
	out := make(map[string]string, len(ops)+1)
	for k, v := range ops {
		out[k] = v
	}
	out[OpType] = category
	return out
}

// fetchRaw returns the unfiltered backend hits for the raw query, consulting
// the result cache first. The cache stores hits pre-operator-filter so later
// operator changes never need another network call.
func (e *Engine) fetchRaw(ctx context.Context, rawQuery, clean string) ([]Hit, Result, error) {
	key := ResultKey(rawQuery)
	if hits, ok := e.results.Get(key); ok {
		return hits, Result{FromCache: true, Total: len(hits), TotalKnown: false}, nil
	}

	page, err := e.backend.Search(ctx, clean, Query{Limit: PageSize, Offset: 0})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, Result{}, err
		}
		return nil, Result{}, fmt.Errorf("backend search: %w", err)
	}
	e.results.Set(key, page.Hits)
	return page.Hits, Result{
		Total:      page.Total,
		TotalKnown: page.TotalKnown,
		TookMs:     page.TookMs,
	}, nil
}

// Suggest fetches completion hints for the clean query, cached on a shorter
// TTL than results.
func (e *Engine) Suggest(ctx context.Context, clean string, limit int) ([]Suggestion, error) {
	key := SuggestKey(clean)
	if s, ok := e.suggests.Get(key); ok {
		return s, nil
	}
	s, err := e.backend.Suggest(ctx, clean, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("backend suggest: %w", err)
	}
	e.suggests.Set(key, s)
	return s, nil
}

// LoadPage fetches one additional result page for the raw query and returns
// it operator-filtered. Accumulation and the loading guard belong to the
// caller's Paginator.
func (e *Engine) LoadPage(ctx context.Context, rawQuery, category string, offset int) (Page, []Hit, error) {
	parsed := ParseOperators(rawQuery)
	page, err := e.backend.Search(ctx, parsed.Clean, Query{Limit: PageSize, Offset: offset})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Page{}, nil, err
		}
		return Page{}, nil, fmt.Errorf("backend search page: %w", err)
	}

	ops := applyCategory(parsed.Operators, category)
	return page, FilterByOperators(page.Hits, ops), nil
}
