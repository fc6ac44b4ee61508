package search

import "strings"

// MatchesEntry reports whether a directory entry matches the query. The
// searchable text is the entry's title, subtitle and content, lower-cased.
// An entry matches when the text contains the whole query, contains any
// individual query word, or passes the fuzzy heuristic in fuzzyWordMatch.
func MatchesEntry(entry Hit, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	text := entry.searchable()
	if strings.Contains(text, q) {
		return true
	}
	words := strings.Fields(text)
	for _, qw := range strings.Fields(q) {
		if strings.Contains(text, qw) {
			return true
		}
		if fuzzyWordMatch(words, qw) {
			return true
		}
	}
	return false
}

// fuzzyWordMatch is prefix-tolerant typo handling: a text word matches when
// it begins with the query word minus its last one or two characters, or the
// query word is a prefix of the text word. This is deliberately not edit
// distance; it is cheap and catches trailing-character typos only.
func fuzzyWordMatch(textWords []string, qw string) bool {
	r := []rune(qw)
	var prefixes []string
	if len(r) >= 3 {
		prefixes = append(prefixes, string(r[:len(r)-1]))
	}
	if len(r) >= 4 {
		prefixes = append(prefixes, string(r[:len(r)-2]))
	}
	for _, tw := range textWords {
		if strings.HasPrefix(tw, qw) {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(tw, p) {
				return true
			}
		}
	}
	return false
}

// MatchesOperators reports whether a hit satisfies every supplied operator.
// "type" compares case-insensitively against the hit type; "project" requires
// the hit content to contain the value; "status" is accepted but not enforced.
func MatchesOperators(h Hit, ops map[string]string) bool {
	for key, val := range ops {
		switch key {
		case OpType:
			if !strings.EqualFold(string(h.Type), val) {
				return false
			}
		case OpProject:
			if !strings.Contains(strings.ToLower(h.Content), strings.ToLower(val)) {
				return false
			}
		case OpStatus:
			// Parsed and tracked in analytics; filtering not implemented yet.
		}
	}
	return true
}

// FilterByOperators returns the hits that satisfy every operator.
func FilterByOperators(hits []Hit, ops map[string]string) []Hit {
	if len(ops) == 0 {
		return hits
	}
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if MatchesOperators(h, ops) {
			out = append(out, h)
		}
	}
	return out
}

// Aggregate merges directory entries and backend hits into one ordered list
// with no duplicate (type, entity_id) pairs. Directory matches come first so
// navigation always outranks content; each group keeps its own relative
// order. Backend hits keep their server score for display only. Operator
// filtering applies to the merged list. Callers cache the unfiltered backend
// hits themselves so operator changes can be re-served without a new call.
func Aggregate(cleanQuery string, ops map[string]string, backendHits, directoryEntries []Hit) []Hit {
	merged := make([]Hit, 0, len(directoryEntries)+len(backendHits))
	seen := make(map[string]struct{}, len(directoryEntries)+len(backendHits))

	add := func(h Hit) {
		k := h.Key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		merged = append(merged, h)
	}

	for _, e := range directoryEntries {
		if MatchesEntry(e, cleanQuery) {
			add(e)
		}
	}
	for _, h := range backendHits {
		add(h)
	}

	return FilterByOperators(merged, ops)
}
