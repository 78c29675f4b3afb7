package analyzer

import "strings"

// Scan analyzes the script text against the default Catalog.
func Scan(script string) *Result {
	return ScanWith(script, Catalog)
}

// ScanWith performs one complete pass over the script with the given rule
// set. The text is split on line feeds only — a carriage return, if present,
// stays part of the line's content — and lines are numbered from 1. Every
// rule is evaluated against every line; each match appends one finding, in
// line order and catalog order within a line.
//
// Comment lines, whose leading-whitespace-trimmed content starts with "#"
// (which includes the shebang), produce no findings.
//
// ScanWith is total: an empty script yields an empty result with all counts
// zero. Rejecting an empty script is the caller's policy, not the scanner's.
func ScanWith(script string, rules []Rule) *Result {
	result := &Result{}
	if script == "" {
		return result
	}

	for i, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, rule := range rules {
			if rule.Matches(line) {
				result.record(Finding{
					Severity: rule.Severity,
					Message:  rule.Message,
					Line:     i + 1,
				})
			}
		}
	}

	return result
}
