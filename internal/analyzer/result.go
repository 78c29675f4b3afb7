package analyzer

// Finding records one rule match against one line.
type Finding struct {
	// Severity is the matched rule's severity.
	Severity Severity
	// Message is the matched rule's message.
	Message string
	// Line is the 1-based line number the rule fired on.
	Line int
}

// RiskLevel classifies a completed scan for the execution prompt.
type RiskLevel int

const (
	// RiskLow indicates no criticals and at most three warnings.
	RiskLow RiskLevel = iota
	// RiskMedium indicates four or more warnings without any critical.
	RiskMedium
	// RiskHigh indicates at least one critical finding.
	RiskHigh
)

// String returns the display name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskHigh:
		return "HIGH"
	case RiskMedium:
		return "MEDIUM"
	case RiskLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// Result aggregates all findings of one completed scan. It is built once by
// Scan and read-only afterwards: the findings slice holds matches in firing
// order (lines top to bottom, catalog order within a line), and the three
// counters always sum to the number of findings.
type Result struct {
	findings []Finding
	critical int
	warning  int
	info     int
}

// record appends a finding and bumps the matching severity counter.
func (r *Result) record(f Finding) {
	r.findings = append(r.findings, f)
	switch f.Severity {
	case Critical:
		r.critical++
	case Warning:
		r.warning++
	case Info:
		r.info++
	}
}

// Findings returns all findings in firing order.
func (r *Result) Findings() []Finding {
	return r.findings
}

// CriticalCount returns the number of critical findings.
func (r *Result) CriticalCount() int { return r.critical }

// WarningCount returns the number of warning findings.
func (r *Result) WarningCount() int { return r.warning }

// InfoCount returns the number of info findings.
func (r *Result) InfoCount() int { return r.info }

// warningThreshold is the strict lower bound of warnings for medium risk:
// four or more warnings raise the level even with zero criticals.
const warningThreshold = 3

// Risk derives the risk level from the final counts. Any critical finding
// makes the script high risk; info findings never affect the level.
func (r *Result) Risk() RiskLevel {
	if r.critical > 0 {
		return RiskHigh
	}
	if r.warning > warningThreshold {
		return RiskMedium
	}
	return RiskLow
}
