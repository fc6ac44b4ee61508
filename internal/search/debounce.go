package search

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Debounce timing. Short queries get a longer settle window because early
// keystrokes churn fastest; long queries dispatch almost immediately.
const (
	delayTwoChars   = 250 * time.Millisecond
	delayShortBurst = 150 * time.Millisecond // length 3-4, previous dispatch <500ms ago
	delayShort      = 100 * time.Millisecond // length 3-4 otherwise
	delayLong       = 80 * time.Millisecond  // length >4

	// burstWindow is how recently the previous dispatch must have fired for
	// a 3-4 char query to be considered part of a typing burst.
	burstWindow = 500 * time.Millisecond

	// loadingThreshold: delays above this surface the loading indicator
	// immediately, before the timer fires, to mask perceived latency.
	loadingThreshold = 120 * time.Millisecond

	// SuggestDelay is the fixed, much shorter settle window for suggestion
	// fetches so hints can appear before full results.
	SuggestDelay = 50 * time.Millisecond

	// TypingResetSlack is added to the search delay for the safety-net timer
	// that clears the typing indicator regardless of completion.
	TypingResetSlack = 300 * time.Millisecond
)

// Action says what a keystroke should lead to.
type Action int

const (
	// ActionDefault: empty query; show default content, no search, no loading.
	ActionDefault Action = iota
	// ActionHint: single character; show a keep-typing hint, no backend call.
	ActionHint
	// ActionSearch: schedule a debounced search.
	ActionSearch
)

// Plan is the dispatch decision for one query snapshot.
type Plan struct {
	Action         Action
	Delay          time.Duration // search debounce delay, ActionSearch only
	ShowLoadingNow bool          // surface the loading state before the timer fires
	SuggestDelay   time.Duration // suggestion debounce delay, ActionSearch only
	TypingResetIn  time.Duration // safety-net timer for the typing indicator
}

// PlanDispatch decides whether and when to search for the given query.
// sinceLast is the time since the previous dispatch fired.
func PlanDispatch(query string, sinceLast time.Duration) Plan {
	q := strings.TrimSpace(query)
	switch n := len([]rune(q)); {
	case n == 0:
		return Plan{Action: ActionDefault}
	case n == 1:
		return Plan{Action: ActionHint}
	default:
		var delay time.Duration
		switch {
		case n == 2:
			delay = delayTwoChars
		case n <= 4:
			if sinceLast < burstWindow {
				delay = delayShortBurst
			} else {
				delay = delayShort
			}
		default:
			delay = delayLong
		}
		return Plan{
			Action:         ActionSearch,
			Delay:          delay,
			ShowLoadingNow: delay > loadingThreshold,
			SuggestDelay:   SuggestDelay,
			TypingResetIn:  delay + TypingResetSlack,
		}
	}
}

// DebounceState is the dispatch lifecycle of the current query.
type DebounceState int

const (
	StateIdle      DebounceState = iota
	StateScheduled               // timer armed, not yet fired
	StateInFlight                // backend call outstanding
	StateSettled                 // last dispatch completed
)

// Debouncer is the explicit debounce/cancellation state machine. Every
// transition invalidates the previous timer and aborts the previous in-flight
// request, so a stale response can never overwrite a fresher one. Timer and
// request identity is tracked by monotonic IDs: a fired timer or completed
// response is only honored when its ID is still current.
type Debouncer struct {
	mu      sync.Mutex
	state   DebounceState
	timerID uint64
	reqID   uint64
	cancel  context.CancelFunc
}

// State returns the current lifecycle state.
func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Schedule arms a new timer, invalidating any pending one and aborting any
// in-flight request. The returned ID must accompany the timer's firing.
func (d *Debouncer) Schedule() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.abortLocked()
	d.timerID++
	d.state = StateScheduled
	return d.timerID
}

// TimerCurrent reports whether a fired timer is still the armed one.
func (d *Debouncer) TimerCurrent(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateScheduled && id == d.timerID
}

// Begin transitions to in-flight: it derives a cancellable context for the
// backend call and returns it with the request ID the response must carry.
func (d *Debouncer) Begin(parent context.Context) (context.Context, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.abortLocked()
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.reqID++
	d.state = StateInFlight
	return ctx, d.reqID
}

// ResponseCurrent reports whether a completed response is still wanted.
func (d *Debouncer) ResponseCurrent(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return id == d.reqID
}

// Settle marks the dispatch for id complete. Stale settles are ignored.
func (d *Debouncer) Settle(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id != d.reqID {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.state = StateSettled
}

// Cancel aborts everything outstanding and returns to idle. Called when the
// query is cleared or the palette closes.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.abortLocked()
	d.timerID++ // invalidate any pending timer
	d.state = StateIdle
}

func (d *Debouncer) abortLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
