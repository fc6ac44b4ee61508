package search

import (
	"context"
	"sync"
)

// fakeBackend is an in-memory Backend test double with call counting.
type fakeBackend struct {
	mu           sync.Mutex
	searchFn     func(ctx context.Context, query string, q Query) (Page, error)
	suggestFn    func(ctx context.Context, query string, limit int) ([]Suggestion, error)
	searchCalls  int
	suggestCalls int
	lastQuery    Query
}

func (f *fakeBackend) Search(ctx context.Context, query string, q Query) (Page, error) {
	f.mu.Lock()
	f.searchCalls++
	f.lastQuery = q
	fn := f.searchFn
	f.mu.Unlock()
	if fn == nil {
		return Page{}, nil
	}
	return fn(ctx, query, q)
}

func (f *fakeBackend) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	f.mu.Lock()
	f.suggestCalls++
	fn := f.suggestFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, query, limit)
}

func (f *fakeBackend) SearchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls
}

func (f *fakeBackend) SuggestCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestCalls
}

func (f *fakeBackend) LastQuery() Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}
