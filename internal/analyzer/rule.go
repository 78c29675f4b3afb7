package analyzer

import "strings"

// Rule is a stateless predicate over a single line of script text, paired
// with a fixed severity and message. The predicate is pure data: Clauses is
// an AND of OR-groups of literal substrings, and the rule matches a line
// when every group has at least one of its substrings present. Matching is
// case-sensitive containment only — no wildcards, no regular expressions.
// This trades precision for full transparency of the catalog.
type Rule struct {
	// Name identifies the rule in tests and debug output.
	Name string
	// Severity is attached to every finding the rule produces.
	Severity Severity
	// Message is the human-readable explanation shown per finding.
	Message string
	// Clauses holds the substring groups: outer slice AND, inner slice OR.
	Clauses [][]string
}

// Matches reports whether the line satisfies every clause of the rule.
// Evaluation has no side effects and inspects nothing but the given line.
func (r Rule) Matches(line string) bool {
	for _, alternatives := range r.Clauses {
		if !containsAny(line, alternatives) {
			return false
		}
	}
	return true
}

// containsAny reports whether the line contains at least one of the
// substrings.
func containsAny(line string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}
