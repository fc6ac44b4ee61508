// Package search implements the command-palette search engine: operator
// parsing, result/suggestion caching, debounce planning, source aggregation,
// pagination, the pages directory with its fallback chain, and the usage
// analytics ledger.
package search

import (
	"context"
	"strings"
)

// HitType classifies a search hit by the kind of entity it points at.
type HitType string

// Known hit types. "page" and "help" are navigation entries; the rest are
// platform records.
const (
	TypeProject     HitType = "project"
	TypeService     HitType = "service"
	TypeRoute       HitType = "route"
	TypeRegistry    HitType = "registry"
	TypeEnvTemplate HitType = "env_template"
	TypeSetting     HitType = "setting"
	TypePage        HitType = "page"
	TypeNode        HitType = "node"
	TypeClient      HitType = "client"
	TypeLog         HitType = "log"
	TypeAdmin       HitType = "admin"
	TypeHelp        HitType = "help"
)

// Hit is a single search result. Hits are immutable once produced; Score is
// server-assigned relevance and is zero when the hit did not come from the
// backend ranker.
type Hit struct {
	ID       string  `json:"id"`
	Type     HitType `json:"type"`
	EntityID string  `json:"entity_id"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	URLPath  string  `json:"url_path"`
	Score    float64 `json:"score"`
	Content  string  `json:"content,omitempty"`
}

// Key returns the identity used for de-duplication across sources.
func (h Hit) Key() string {
	return string(h.Type) + "\x00" + h.EntityID
}

// searchable returns the lower-cased text a query is matched against.
func (h Hit) searchable() string {
	return strings.ToLower(h.Title + " " + h.Subtitle + " " + h.Content)
}

// Suggestion is a lightweight completion hint. Selecting one navigates to
// URLPath, same as a full hit.
type Suggestion struct {
	Label   string  `json:"label"`
	Type    HitType `json:"type"`
	URLPath string  `json:"url_path"`
}

// Query describes one backend search request.
type Query struct {
	Type   HitType // restrict to a single hit type; empty means all
	Limit  int
	Offset int
}

// Page is one page of backend results. Total is only meaningful when
// TotalKnown is true; some backends omit it.
type Page struct {
	Hits       []Hit
	Total      int
	TotalKnown bool
	TookMs     int64
}

// Backend is the remote search service the engine talks to. Implementations
// must honor context cancellation: an aborted call returns ctx.Err().
type Backend interface {
	Search(ctx context.Context, query string, q Query) (Page, error)
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// KV is the persisted string-blob storage the engine depends on for the
// pages snapshot, the analytics ledger, and recent searches. All failures
// are best-effort: callers log and continue.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
