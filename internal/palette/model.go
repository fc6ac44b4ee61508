// Package palette is the interactive command palette: a Bubble Tea TUI that
// drives the search engine with debounced keystrokes, keyboard-navigable
// combined suggestion/result selection, category tabs, and infinite scroll.
package palette

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quayside/dockhand/internal/search"
)

// maxSuggestionRows caps how many suggestions join the selectable list.
const maxSuggestionRows = 5

// defaultPageRows is how many directory pages the default (empty query)
// content shows below the recent searches.
const defaultPageRows = 8

// paletteState is the palette's display state.
type paletteState int

const (
	stateDefault paletteState = iota // empty query: recent searches + pages
	stateHint                        // one character: keep typing
	stateSearching                   // debounce pending or fetch in flight
	stateLoaded                      // results on screen
	stateEmpty                       // search completed with nothing to show
)

// StatusFunc fetches the backend search mode for the footer indicator.
type StatusFunc func(ctx context.Context) (fts5 bool, err error)

// category is one filter tab.
type category struct {
	Label string
	Type  search.HitType // empty means all
}

var categories = []category{
	{Label: "All"},
	{Label: "Projects", Type: search.TypeProject},
	{Label: "Services", Type: search.TypeService},
	{Label: "Routes", Type: search.TypeRoute},
	{Label: "Pages", Type: search.TypePage},
	{Label: "Settings", Type: search.TypeSetting},
}

// itemKind discriminates rows of the combined selectable list.
type itemKind int

const (
	itemSuggestion itemKind = iota
	itemHit
	itemRecent
	itemPage
)

// listItem is one selectable row.
type listItem struct {
	kind     itemKind
	title    string
	subtitle string
	url      string
	query    string // itemRecent: the query to replay
	hitType  search.HitType
}

// --- messages ---

type initMsg struct{}

type directoryMsg struct{}

type statusMsg struct {
	fts5 bool
	err  error
}

type searchTimerMsg struct{ id uint64 }

type suggestTimerMsg struct{ id uint64 }

type typingResetMsg struct{ id uint64 }

type searchDoneMsg struct {
	reqID uint64
	res   search.Result
	err   error
}

type suggestDoneMsg struct {
	id          uint64
	suggestions []search.Suggestion
	err         error
}

type loadMoreDoneMsg struct {
	gen      uint64
	count    int
	total    int
	known    bool
	filtered []search.Hit
	err      error
}

// Model is the Bubble Tea model for the command palette.
type Model struct {
	state  paletteState
	engine *search.Engine
	status StatusFunc
	logger *slog.Logger

	input textinput.Model
	spin  spinner.Model
	vp    viewport.Model

	deb       *search.Debouncer
	paginator *search.Paginator

	// Timer identity counters; a fired timer is honored only when its id is
	// still current.
	suggestTimerID uint64
	typingResetID  uint64
	loadGen        uint64 // invalidates in-flight page loads on query change

	suggestCancel  context.CancelFunc
	loadMoreCancel context.CancelFunc

	lastDispatch time.Time

	rawHits     []search.Hit // unfiltered page-0 backend hits, for refilter
	results     []search.Hit // accumulated filtered results
	suggestions []search.Suggestion

	activeCategory int
	selection      int
	typing         bool // typing indicator; cleared by the safety-net timer
	loading        bool

	total      int
	totalKnown bool
	tookMs     int64
	fromCache  bool

	fts5      *bool // nil until the status endpoint answers
	searchErr error // last network failure; display degrades, never blocks

	width  int
	height int

	// result holds the selected destination after Enter.
	result string
}

// New creates a palette model around an engine. status may be nil.
func New(engine *search.Engine, status StatusFunc, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "Search projects, services, pages…  (type:service redis)"
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		state:     stateDefault,
		engine:    engine,
		status:    status,
		logger:    logger,
		input:     ti,
		spin:      sp,
		vp:        viewport.New(0, 0),
		deb:       &search.Debouncer{},
		paginator: search.NewPaginator(),
	}
}

// Result returns the selected destination URL path, or "" when cancelled.
func (m Model) Result() string {
	return m.result
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return initMsg{} },
		m.spin.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = m.listHeight()
		m.refreshViewport()
		return m, nil

	case initMsg:
		return m, tea.Batch(m.resolveDirectory(), m.fetchStatus())

	case directoryMsg:
		// Directory entries may change what the current query matches.
		if m.state == stateLoaded || m.state == stateEmpty {
			m.results = m.engine.Refilter(m.input.Value(), m.categoryFilter(), m.rawHits)
			m.afterResultsChanged()
		}
		return m, nil

	case statusMsg:
		if msg.err == nil {
			v := msg.fts5
			m.fts5 = &v
		}
		return m, nil

	case searchTimerMsg:
		return m.handleSearchTimer(msg)

	case suggestTimerMsg:
		return m.handleSuggestTimer(msg)

	case typingResetMsg:
		if msg.id == m.typingResetID {
			m.typing = false
		}
		return m, nil

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case suggestDoneMsg:
		if msg.id == m.suggestTimerID && msg.err == nil {
			m.suggestions = msg.suggestions
			if len(m.suggestions) > maxSuggestionRows {
				m.suggestions = m.suggestions[:maxSuggestionRows]
			}
			m.refreshViewport()
		}
		return m, nil

	case loadMoreDoneMsg:
		return m.handleLoadMoreDone(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.cancelAll()
		return m, tea.Quit

	case tea.KeyEnter:
		return m.activateSelection()

	case tea.KeyUp:
		if m.selection > 0 {
			m.selection--
		}
		m.ensureSelectionVisible()
		return m, nil

	case tea.KeyDown:
		if m.selection < len(m.items())-1 {
			m.selection++
		}
		m.ensureSelectionVisible()
		return m, m.maybeLoadMore()

	case tea.KeyPgDown:
		m.vp.ViewDown()
		return m, m.maybeLoadMore()

	case tea.KeyPgUp:
		m.vp.ViewUp()
		return m, nil

	case tea.KeyTab:
		m.activeCategory = (m.activeCategory + 1) % len(categories)
		m.applyCategoryChange()
		return m, nil

	case tea.KeyShiftTab:
		m.activeCategory = (m.activeCategory + len(categories) - 1) % len(categories)
		m.applyCategoryChange()
		return m, nil

	case tea.KeyCtrlA:
		// Broaden: drop the category filter after an empty filtered result.
		if m.activeCategory != 0 {
			m.activeCategory = 0
			m.applyCategoryChange()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		return m, tea.Batch(cmd, m.onQueryChanged())
	}
	return m, cmd
}

// onQueryChanged resets pagination, clears accumulated results, and plans
// the next dispatch per the debounce rules.
func (m *Model) onQueryChanged() tea.Cmd {
	query := m.input.Value()

	m.paginator.Reset()
	m.loadGen++
	m.cancelLoadMore()
	m.results = nil
	m.rawHits = nil
	m.selection = 0
	m.searchErr = nil

	plan := search.PlanDispatch(query, time.Since(m.lastDispatch))
	switch plan.Action {
	case search.ActionDefault:
		m.deb.Cancel()
		m.cancelSuggest()
		m.suggestions = nil
		m.typing = false
		m.loading = false
		m.state = stateDefault
		m.refreshViewport()
		return nil

	case search.ActionHint:
		m.deb.Cancel()
		m.cancelSuggest()
		m.suggestions = nil
		m.typing = false
		m.loading = false
		m.state = stateHint
		m.refreshViewport()
		return nil
	}

	timerID := m.deb.Schedule()
	m.typing = true
	m.loading = plan.ShowLoadingNow
	m.state = stateSearching
	m.refreshViewport()

	m.suggestTimerID++
	m.typingResetID++
	suggestID := m.suggestTimerID
	resetID := m.typingResetID

	return tea.Batch(
		tea.Tick(plan.Delay, func(time.Time) tea.Msg {
			return searchTimerMsg{id: timerID}
		}),
		tea.Tick(plan.SuggestDelay, func(time.Time) tea.Msg {
			return suggestTimerMsg{id: suggestID}
		}),
		tea.Tick(plan.TypingResetIn, func(time.Time) tea.Msg {
			return typingResetMsg{id: resetID}
		}),
	)
}

// handleSearchTimer dispatches the search when the fired timer is current.
func (m Model) handleSearchTimer(msg searchTimerMsg) (tea.Model, tea.Cmd) {
	if !m.deb.TimerCurrent(msg.id) {
		return m, nil
	}

	ctx, reqID := m.deb.Begin(context.Background())
	m.lastDispatch = time.Now()
	m.loading = true

	query := m.input.Value()
	cat := m.categoryFilter()
	engine := m.engine
	return m, func() tea.Msg {
		res, err := engine.Search(ctx, query, cat)
		return searchDoneMsg{reqID: reqID, res: res, err: err}
	}
}

// handleSearchDone applies a completed search, discarding stale responses.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if !m.deb.ResponseCurrent(msg.reqID) {
		return m, nil
	}
	m.deb.Settle(msg.reqID)
	m.loading = false
	m.typing = false

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		// Degrade to directory-only matches; never a blocking error.
		m.logger.Warn("search failed", "error", msg.err)
		m.searchErr = msg.err
		m.rawHits = nil
		m.results = m.engine.Refilter(m.input.Value(), m.categoryFilter(), nil)
		m.afterResultsChanged()
		return m, nil
	}

	m.searchErr = nil
	m.rawHits = msg.res.RawHits
	m.results = msg.res.Hits
	m.total = msg.res.Total
	m.totalKnown = msg.res.TotalKnown
	m.tookMs = msg.res.TookMs
	m.fromCache = msg.res.FromCache
	m.paginator.Seed(len(msg.res.RawHits), msg.res.Total, msg.res.TotalKnown)
	m.selection = 0
	m.afterResultsChanged()
	return m, nil
}

// handleSuggestTimer fires the suggestion fetch on its own short delay.
func (m Model) handleSuggestTimer(msg suggestTimerMsg) (tea.Model, tea.Cmd) {
	if msg.id != m.suggestTimerID {
		return m, nil
	}
	clean := search.ParseOperators(m.input.Value()).Clean
	if len([]rune(strings.TrimSpace(clean))) < 2 {
		return m, nil
	}

	m.cancelSuggest()
	ctx, cancel := context.WithCancel(context.Background())
	m.suggestCancel = cancel

	id := msg.id
	engine := m.engine
	return m, func() tea.Msg {
		s, err := engine.Suggest(ctx, clean, maxSuggestionRows)
		if err != nil && !errors.Is(err, context.Canceled) {
			// Suggestions are decoration; a failure just means none.
			return suggestDoneMsg{id: id, err: err}
		}
		return suggestDoneMsg{id: id, suggestions: s, err: err}
	}
}

// maybeLoadMore requests the next page when the scroll position is near the
// bottom and the paginator admits a load.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.state != stateLoaded {
		return nil
	}
	if !search.NearBottom(m.vp.TotalLineCount(), m.vp.YOffset, m.vp.Height, search.ScrollThreshold) {
		return nil
	}
	_, offset, ok := m.paginator.BeginLoad(m.input.Value())
	if !ok {
		return nil
	}

	m.cancelLoadMore()
	ctx, cancel := context.WithCancel(context.Background())
	m.loadMoreCancel = cancel

	gen := m.loadGen
	query := m.input.Value()
	cat := m.categoryFilter()
	engine := m.engine
	return func() tea.Msg {
		page, filtered, err := engine.LoadPage(ctx, query, cat, offset)
		if err != nil {
			return loadMoreDoneMsg{gen: gen, err: err}
		}
		return loadMoreDoneMsg{
			gen:      gen,
			count:    len(page.Hits),
			total:    page.Total,
			known:    page.TotalKnown,
			filtered: filtered,
		}
	}
}

// handleLoadMoreDone appends a fetched page, dropping stale generations.
func (m Model) handleLoadMoreDone(msg loadMoreDoneMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.loadGen {
		return m, nil
	}
	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			// hasMore stays put so the next scroll can retry.
			m.logger.Warn("load more failed", "error", msg.err)
		}
		m.paginator.Fail()
		return m, nil
	}
	m.paginator.Complete(msg.count, msg.total, msg.known)
	if len(msg.filtered) > 0 {
		m.results = append(m.results, msg.filtered...)
		m.refreshViewport()
	}
	return m, nil
}

// activateSelection navigates to the selected item. Selecting a recent
// search replays it instead.
func (m Model) activateSelection() (tea.Model, tea.Cmd) {
	items := m.items()
	if m.selection < 0 || m.selection >= len(items) {
		return m, nil
	}
	it := items[m.selection]

	if it.kind == itemRecent {
		m.input.SetValue(it.query)
		m.input.CursorEnd()
		return m, m.onQueryChanged()
	}

	m.result = it.url
	m.cancelAll()
	return m, tea.Quit
}

// applyCategoryChange re-filters from the cached raw hits without a network
// call and resets the selection.
func (m *Model) applyCategoryChange() {
	m.selection = 0
	if m.state == stateLoaded || m.state == stateEmpty {
		m.results = m.engine.Refilter(m.input.Value(), m.categoryFilter(), m.rawHits)
		m.afterResultsChanged()
	}
}

// afterResultsChanged recomputes display state from the result list.
func (m *Model) afterResultsChanged() {
	if len(m.results) == 0 {
		m.state = stateEmpty
	} else {
		m.state = stateLoaded
	}
	m.clampSelection()
	m.refreshViewport()
}

func (m Model) categoryFilter() string {
	return string(categories[m.activeCategory].Type)
}

// items builds the combined selectable list for the current state.
func (m Model) items() []listItem {
	var out []listItem

	switch m.state {
	case stateDefault:
		for _, q := range m.engine.Recent().Items() {
			out = append(out, listItem{kind: itemRecent, title: q, query: q})
		}
		entries := m.engine.Directory().Entries()
		if len(entries) > defaultPageRows {
			entries = entries[:defaultPageRows]
		}
		for _, e := range entries {
			out = append(out, listItem{
				kind:     itemPage,
				title:    e.Title,
				subtitle: e.Subtitle,
				url:      e.URLPath,
				hitType:  e.Type,
			})
		}

	case stateSearching, stateLoaded, stateEmpty:
		if m.typing {
			for _, s := range m.suggestions {
				out = append(out, listItem{
					kind:    itemSuggestion,
					title:   s.Label,
					url:     s.URLPath,
					hitType: s.Type,
				})
			}
		}
		for _, h := range m.results {
			out = append(out, listItem{
				kind:     itemHit,
				title:    h.Title,
				subtitle: h.Subtitle,
				url:      h.URLPath,
				hitType:  h.Type,
			})
		}
	}
	return out
}

func (m *Model) clampSelection() {
	n := len(m.items())
	if n == 0 {
		m.selection = 0
		return
	}
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= n {
		m.selection = n - 1
	}
}

// resolveDirectory runs the fallback chain off the UI goroutine.
func (m Model) resolveDirectory() tea.Cmd {
	engine := m.engine
	return func() tea.Msg {
		engine.Directory().Resolve(context.Background())
		return directoryMsg{}
	}
}

func (m Model) fetchStatus() tea.Cmd {
	if m.status == nil {
		return nil
	}
	status := m.status
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		fts5, err := status(ctx)
		return statusMsg{fts5: fts5, err: err}
	}
}

// cancelAll clears every pending timer and aborts every in-flight request.
func (m *Model) cancelAll() {
	m.deb.Cancel()
	m.cancelSuggest()
	m.cancelLoadMore()
	m.suggestTimerID++
	m.typingResetID++
}

func (m *Model) cancelSuggest() {
	if m.suggestCancel != nil {
		m.suggestCancel()
		m.suggestCancel = nil
	}
}

func (m *Model) cancelLoadMore() {
	if m.loadMoreCancel != nil {
		m.loadMoreCancel()
		m.loadMoreCancel = nil
	}
}
