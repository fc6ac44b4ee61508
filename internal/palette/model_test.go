package palette

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayside/dockhand/internal/search"
)

// stubBackend implements search.Backend for model tests.
type stubBackend struct {
	mu          sync.Mutex
	searchFn    func(ctx context.Context, query string, q search.Query) (search.Page, error)
	searchCalls int
}

func (b *stubBackend) Search(ctx context.Context, query string, q search.Query) (search.Page, error) {
	b.mu.Lock()
	b.searchCalls++
	fn := b.searchFn
	b.mu.Unlock()
	if fn == nil {
		return search.Page{}, nil
	}
	return fn(ctx, query, q)
}

func (b *stubBackend) Suggest(context.Context, string, int) ([]search.Suggestion, error) {
	return nil, nil
}

func (b *stubBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searchCalls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestModel builds a model whose directory is already resolved to the
// static pages, so backend call counts only reflect palette activity.
func newTestModel(t *testing.T, backend search.Backend) Model {
	t.Helper()
	dir := search.NewResolver(&stubBackend{}, nil, nil, quietLogger())
	dir.Resolve(context.Background())
	engine, err := search.NewEngine(search.EngineConfig{
		Backend:   backend,
		Directory: dir,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)

	m := New(engine, nil, quietLogger())
	upd, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return upd.(Model)
}

func typeRunes(m Model, s string) (Model, tea.Cmd) {
	upd, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return upd.(Model), cmd
}

// runSearch walks one full cycle by hand: schedule the timer, fire it, and
// feed the resulting message back in.
func runSearch(t *testing.T, m Model) Model {
	t.Helper()
	id := m.deb.Schedule()
	upd, cmd := m.Update(searchTimerMsg{id: id})
	m = upd.(Model)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, searchDoneMsg{}, msg)
	upd, _ = m.Update(msg)
	return upd.(Model)
}

func TestModel_EmptyQueryShowsRecentAndPages(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.engine.Recent().Add("postgres")
	m.engine.Recent().Add("redis")

	assert.Equal(t, stateDefault, m.state)
	items := m.items()
	require.NotEmpty(t, items)

	assert.Equal(t, itemRecent, items[0].kind)
	assert.Equal(t, "redis", items[0].title, "most recent first")
	assert.Equal(t, itemRecent, items[1].kind)

	var pages int
	for _, it := range items[2:] {
		require.Equal(t, itemPage, it.kind)
		pages++
	}
	assert.Equal(t, defaultPageRows, pages, "directory preview is capped")
}

func TestModel_SingleCharShowsHint(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m, _ = typeRunes(m, "d")

	assert.Equal(t, stateHint, m.state)
	assert.Empty(t, m.items())
}

func TestModel_TypingSchedulesSearch(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m, cmd := typeRunes(m, "redis")

	assert.Equal(t, stateSearching, m.state)
	assert.True(t, m.typing)
	require.NotNil(t, cmd, "search, suggest and typing-reset timers scheduled")
}

func TestModel_SearchCycleLoadsResults(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(_ context.Context, query string, _ search.Query) (search.Page, error) {
			return search.Page{
				Hits: []search.Hit{{
					Type:     search.TypeService,
					EntityID: "redis-1",
					Title:    "redis",
					URLPath:  "/services/redis-1",
				}},
				Total: 1, TotalKnown: true, TookMs: 9,
			}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)

	assert.Equal(t, stateLoaded, m.state)
	assert.False(t, m.loading)
	require.Len(t, m.results, 1)
	assert.Equal(t, "redis", m.results[0].Title)
	assert.True(t, m.totalKnown)
	assert.Equal(t, int64(9), m.tookMs)
	assert.Equal(t, 0, m.selection)
}

func TestModel_StaleSearchResponseDiscarded(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{{
				Type: search.TypeService, EntityID: "stale", Title: "stale", URLPath: "/stale",
			}}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")

	id := m.deb.Schedule()
	upd, cmd := m.Update(searchTimerMsg{id: id})
	m = upd.(Model)
	staleMsg := cmd()

	// A newer dispatch supersedes the one in flight.
	m.deb.Begin(context.Background())

	upd, _ = m.Update(staleMsg)
	m = upd.(Model)
	assert.Empty(t, m.results, "stale response must not land")
}

func TestModel_ExpiredTimerDoesNotDispatch(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")

	old := m.deb.Schedule()
	m.deb.Schedule() // supersedes old

	_, cmd := m.Update(searchTimerMsg{id: old})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, backend.calls())
}

func TestModel_SearchErrorDegradesToDirectory(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{}, errors.New("backend down")
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "services")
	m = runSearch(t, m)

	assert.Error(t, m.searchErr)
	require.NotEmpty(t, m.results, "directory pages still match offline")
	for _, h := range m.results {
		assert.Equal(t, search.TypePage, h.Type)
	}
	assert.Equal(t, stateLoaded, m.state)
}

func TestModel_CategoryTabRefiltersWithoutNetwork(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{
				{Type: search.TypeService, EntityID: "redis-1", Title: "redis", URLPath: "/services/redis-1"},
				{Type: search.TypeRoute, EntityID: "r1", Title: "redis-route", URLPath: "/routes/r1"},
			}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)
	require.Len(t, m.results, 2)
	calls := backend.calls()

	// All -> Projects: nothing matches.
	upd, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = upd.(Model)
	assert.Equal(t, 1, m.activeCategory)
	assert.Equal(t, stateEmpty, m.state)
	assert.Empty(t, m.results)

	// Projects -> Services: only the service remains.
	upd, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = upd.(Model)
	require.Len(t, m.results, 1)
	assert.Equal(t, search.TypeService, m.results[0].Type)

	assert.Equal(t, calls, backend.calls(), "tab changes must not refetch")
}

func TestModel_ShiftTabCyclesBackwards(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	upd, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = upd.(Model)
	assert.Equal(t, len(categories)-1, m.activeCategory)
}

func TestModel_CtrlABroadensToAll(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{
				{Type: search.TypeRoute, EntityID: "r1", Title: "redis-route", URLPath: "/routes/r1"},
			}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)

	upd, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab}) // Projects: empty
	m = upd.(Model)
	require.Equal(t, stateEmpty, m.state)

	upd, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	m = upd.(Model)
	assert.Equal(t, 0, m.activeCategory)
	assert.Equal(t, stateLoaded, m.state)
	assert.NotEmpty(t, m.results)
}

func TestModel_EnterOnHitQuitsWithURL(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{{
				Type: search.TypeService, EntityID: "redis-1", Title: "redis", URLPath: "/services/redis-1",
			}}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)

	upd, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = upd.(Model)

	assert.Equal(t, "/services/redis-1", m.Result())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_EnterOnRecentReplaysQuery(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.engine.Recent().Add("postgres cluster")

	upd, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = upd.(Model)

	assert.Empty(t, m.Result(), "replay must not navigate")
	assert.Equal(t, "postgres cluster", m.input.Value())
	assert.Equal(t, stateSearching, m.state)
	assert.NotNil(t, cmd)
}

func TestModel_EscQuitsWithoutResult(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	upd, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = upd.(Model)

	assert.Empty(t, m.Result())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_SelectionMovesAndClamps(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m.engine.Recent().Add("redis")
	n := len(m.items())
	require.Greater(t, n, 1)

	// Up at the top stays put.
	upd, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = upd.(Model)
	assert.Equal(t, 0, m.selection)

	for i := 0; i < n+3; i++ {
		upd, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = upd.(Model)
	}
	assert.Equal(t, n-1, m.selection, "down stops at the last row")
}

func TestModel_QueryChangeResetsResultsAndSelection(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{{
				Type: search.TypeService, EntityID: "redis-1", Title: "redis", URLPath: "/services/redis-1",
			}}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)
	require.NotEmpty(t, m.results)
	gen := m.loadGen

	m, _ = typeRunes(m, "x")
	assert.Empty(t, m.results)
	assert.Empty(t, m.rawHits)
	assert.Equal(t, 0, m.selection)
	assert.Greater(t, m.loadGen, gen, "in-flight page loads invalidated")
}

func TestModel_ClearingQueryReturnsToDefault(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m, _ = typeRunes(m, "re")
	assert.Equal(t, stateSearching, m.state)

	upd, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = upd.(Model)
	upd, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = upd.(Model)

	assert.Equal(t, stateDefault, m.state)
	assert.False(t, m.typing)
}

func TestModel_SuggestionsCappedAndStaleDropped(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m, _ = typeRunes(m, "redis")

	many := make([]search.Suggestion, maxSuggestionRows+4)
	for i := range many {
		many[i] = search.Suggestion{Label: "s"}
	}

	upd, _ := m.Update(suggestDoneMsg{id: m.suggestTimerID, suggestions: many})
	m = upd.(Model)
	assert.Len(t, m.suggestions, maxSuggestionRows)

	upd, _ = m.Update(suggestDoneMsg{id: m.suggestTimerID - 1, suggestions: many[:1]})
	m = upd.(Model)
	assert.Len(t, m.suggestions, maxSuggestionRows, "stale suggestion batch ignored")
}

func TestModel_LoadMoreAppendsAndStaleGenDropped(t *testing.T) {
	backend := &stubBackend{
		searchFn: func(context.Context, string, search.Query) (search.Page, error) {
			return search.Page{Hits: []search.Hit{{
				Type: search.TypeService, EntityID: "redis-1", Title: "redis", URLPath: "/services/redis-1",
			}}}, nil
		},
	}
	m := newTestModel(t, backend)
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)
	base := len(m.results)

	more := []search.Hit{{
		Type: search.TypeService, EntityID: "redis-2", Title: "redis-replica", URLPath: "/services/redis-2",
	}}

	upd, _ := m.Update(loadMoreDoneMsg{gen: m.loadGen, count: 1, filtered: more})
	m = upd.(Model)
	assert.Len(t, m.results, base+1)

	upd, _ = m.Update(loadMoreDoneMsg{gen: m.loadGen - 1, count: 1, filtered: more})
	m = upd.(Model)
	assert.Len(t, m.results, base+1, "stale generation must not append")
}

func TestModel_LoadMoreErrorKeepsRetryPossible(t *testing.T) {
	m := newTestModel(t, &stubBackend{})
	m, _ = typeRunes(m, "redis")
	m = runSearch(t, m)

	m.paginator.Seed(search.PageSize, 0, false)
	_, _, ok := m.paginator.BeginLoad("redis")
	require.True(t, ok)

	upd, _ := m.Update(loadMoreDoneMsg{gen: m.loadGen, err: errors.New("boom")})
	m = upd.(Model)
	assert.False(t, m.paginator.Loading())
	assert.True(t, m.paginator.HasMore())
}

func TestModel_StatusMessageSetsFooterMode(t *testing.T) {
	m := newTestModel(t, &stubBackend{})

	upd, _ := m.Update(statusMsg{fts5: true})
	m = upd.(Model)
	require.NotNil(t, m.fts5)
	assert.True(t, *m.fts5)

	upd, _ = m.Update(statusMsg{fts5: false, err: errors.New("no status")})
	m = upd.(Model)
	assert.True(t, *m.fts5, "errors leave the last known mode")
}
