// Package analyzer provides deterministic line-by-line analysis of shell
// scripts. It is intentionally not LLM-based — the scan must be fast,
// reproducible, and independent of any configured AI review backend, because
// it alone decides the risk level shown at the execution prompt.
package analyzer

// Severity represents the concern level attached to a single finding.
type Severity int

const (
	// Info indicates advisory findings that never raise the risk level.
	Info Severity = iota
	// Warning indicates operations that deserve attention (sudo, writes to
	// system directories) but are common in legitimate install scripts.
	Warning
	// Critical indicates operations that can cause real damage or hide
	// malicious intent (recursive deletes, piping downloads into a shell).
	Critical
)

// String returns the fixed display name of the severity.
func (s Severity) String() string {
	switch s {
	case Critical:
		return "CRITICAL"
	case Warning:
		return "WARNING"
	case Info:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}
