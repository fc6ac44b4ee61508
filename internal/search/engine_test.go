package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine wires an engine around backend with a directory that has
// already resolved to the static pages, so seed searches never hit backend
// and call counts stay meaningful.
func newTestEngine(t *testing.T, backend Backend) *Engine {
	t.Helper()
	dir := NewResolver(&fakeBackend{}, nil, nil, nil)
	dir.Resolve(context.Background())
	e, err := NewEngine(EngineConfig{Backend: backend, Directory: dir})
	require.NoError(t, err)
	return e
}

func TestNewEngine_RequiresBackend(t *testing.T) {
	_, err := NewEngine(EngineConfig{})
	assert.Error(t, err)
}

func TestEngine_SearchCacheMiss(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(_ context.Context, query string, q Query) (Page, error) {
			assert.Equal(t, "db", query)
			return Page{
				Hits:       []Hit{svc("db-1", "db-primary", "")},
				Total:      1,
				TotalKnown: true,
				TookMs:     12,
			}, nil
		},
	}
	e := newTestEngine(t, backend)

	res, err := e.Search(context.Background(), "db", "")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.SearchCalls())
	assert.Equal(t, PageSize, backend.LastQuery().Limit)
	assert.Equal(t, 0, backend.LastQuery().Offset)
	assert.False(t, res.FromCache)
	assert.True(t, res.TotalKnown)
	assert.Equal(t, int64(12), res.TookMs)
	require.NotEmpty(t, res.Hits)
}

func TestEngine_RepeatSearchServedFromCache(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(context.Context, string, Query) (Page, error) {
			return Page{Hits: []Hit{svc("db-1", "db-primary", "")}}, nil
		},
	}
	e := newTestEngine(t, backend)

	_, err := e.Search(context.Background(), "db", "")
	require.NoError(t, err)

	res, err := e.Search(context.Background(), "DB ", "")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.SearchCalls(), "case and whitespace variants share a cache entry")
	assert.True(t, res.FromCache)
	assert.NotEmpty(t, res.Hits)
}

func TestEngine_CacheStoresUnfilteredHits(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(context.Context, string, Query) (Page, error) {
			return Page{Hits: []Hit{
				svc("redis-1", "redis", ""),
				{Type: TypeRoute, EntityID: "r1", Title: "redis-route", URLPath: "/routes/r1"},
			}}, nil
		},
	}
	e := newTestEngine(t, backend)

	res, err := e.Search(context.Background(), "redis", "service")
	require.NoError(t, err)

	// Category narrows the visible hits but the raw set keeps everything.
	for _, h := range res.Hits {
		if h.Type != TypePage {
			assert.Equal(t, TypeService, h.Type)
		}
	}
	assert.Len(t, res.RawHits, 2)
}

func TestEngine_ExplicitTypeOperatorWinsOverCategory(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(context.Context, string, Query) (Page, error) {
			return Page{Hits: []Hit{
				svc("redis-1", "redis", ""),
				{Type: TypeRoute, EntityID: "r1", Title: "redis-route", URLPath: "/routes/r1"},
			}}, nil
		},
	}
	e := newTestEngine(t, backend)

	res, err := e.Search(context.Background(), "type:route redis", "service")
	require.NoError(t, err)

	require.Len(t, res.Hits, 1)
	assert.Equal(t, TypeRoute, res.Hits[0].Type)
}

func TestEngine_SearchErrorPropagates(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(context.Context, string, Query) (Page, error) {
			return Page{}, errors.New("boom")
		},
	}
	e := newTestEngine(t, backend)

	_, err := e.Search(context.Background(), "db", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend search")

	// Errors are not cached; the next attempt hits the network again.
	_, _ = e.Search(context.Background(), "db", "")
	assert.Equal(t, 2, backend.SearchCalls())
}

func TestEngine_SearchCancellationUnwrapped(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(ctx context.Context, _ string, _ Query) (Page, error) {
			return Page{}, context.Canceled
		},
	}
	e := newTestEngine(t, backend)

	_, err := e.Search(context.Background(), "db", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_SearchRecordsAnalyticsAndHistory(t *testing.T) {
	backend := &fakeBackend{}
	e := newTestEngine(t, backend)

	_, err := e.Search(context.Background(), "type:service redis", "services")
	require.NoError(t, err)

	snap := e.Ledger().Snapshot()
	assert.Equal(t, 1, snap.TotalSearches)
	assert.Equal(t, 1, snap.OperatorUsage["type"])
	assert.Equal(t, 1, snap.CategoryUsage["services"])

	assert.Equal(t, []string{"type:service redis"}, e.Recent().Items())
}

func TestEngine_SuggestCached(t *testing.T) {
	backend := &fakeBackend{
		suggestFn: func(_ context.Context, query string, limit int) ([]Suggestion, error) {
			return []Suggestion{{Label: query + "-1"}}, nil
		},
	}
	e := newTestEngine(t, backend)

	s1, err := e.Suggest(context.Background(), "red", 5)
	require.NoError(t, err)
	s2, err := e.Suggest(context.Background(), "Red", 5)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, backend.SuggestCalls())
}

func TestEngine_LoadPagePassesOffsetAndFilters(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(_ context.Context, query string, q Query) (Page, error) {
			assert.Equal(t, "redis", query, "operators stripped before the wire")
			return Page{Hits: []Hit{
				svc("redis-2", "redis-replica", ""),
				{Type: TypeRoute, EntityID: "r2", Title: "redis-route", URLPath: "/routes/r2"},
			}, Total: 45, TotalKnown: true}, nil
		},
	}
	e := newTestEngine(t, backend)

	page, filtered, err := e.LoadPage(context.Background(), "type:service redis", "", PageSize)
	require.NoError(t, err)

	assert.Equal(t, PageSize, backend.LastQuery().Offset)
	assert.Len(t, page.Hits, 2)
	require.Len(t, filtered, 1)
	assert.Equal(t, TypeService, filtered[0].Type)
}

func TestEngine_RefilterUsesRawHitsWithoutNetwork(t *testing.T) {
	backend := &fakeBackend{
		searchFn: func(context.Context, string, Query) (Page, error) {
			return Page{Hits: []Hit{
				svc("redis-1", "redis", ""),
				{Type: TypeRoute, EntityID: "r1", Title: "redis-route", URLPath: "/routes/r1"},
			}}, nil
		},
	}
	e := newTestEngine(t, backend)

	res, err := e.Search(context.Background(), "redis", "")
	require.NoError(t, err)
	calls := backend.SearchCalls()

	narrowed := e.Refilter("redis", "route", res.RawHits)
	require.Len(t, narrowed, 1)
	assert.Equal(t, TypeRoute, narrowed[0].Type)
	assert.Equal(t, calls, backend.SearchCalls(), "refilter must not touch the backend")
}
