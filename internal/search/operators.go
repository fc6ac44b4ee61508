package search

import (
	"regexp"
	"strings"
)

// operatorRE matches a key:value token. No quoting or escaping is supported;
// a colon inside a word always starts an operator value.
var operatorRE = regexp.MustCompile(`([A-Za-z0-9_-]+):(\S+)`)

// Recognized operator keys. Unknown keys are still parsed and stripped from
// the query text so they never pollute the full-text match.
const (
	OpType    = "type"
	OpProject = "project"
	OpStatus  = "status" // parsed and tracked, not yet enforced as a filter
)

// ParsedQuery is the outcome of one operator-parse pass over raw input.
type ParsedQuery struct {
	Operators map[string]string
	Clean     string
}

// ParseOperators extracts every key:value token from the raw query. The last
// occurrence of a repeated key wins. Clean is the residual text with matched
// tokens removed and whitespace collapsed.
func ParseOperators(raw string) ParsedQuery {
	ops := make(map[string]string)
	clean := operatorRE.ReplaceAllStringFunc(raw, func(tok string) string {
		m := operatorRE.FindStringSubmatch(tok)
		ops[strings.ToLower(m[1])] = m[2]
		return " "
	})
	return ParsedQuery{
		Operators: ops,
		Clean:     strings.Join(strings.Fields(clean), " "),
	}
}
