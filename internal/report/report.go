// Package report renders analysis results for the terminal: the finding
// list with severity-colored labels, the numbered script listing, the count
// summary, and the risk-level advisory shown at the execution prompt.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/user/vetsh/internal/analyzer"
	"github.com/user/vetsh/internal/color"
)

// ErrInvalidMode is returned when an invalid color mode string is provided.
var ErrInvalidMode = errors.New("invalid color mode")

// Mode controls when ANSI colors are emitted.
type Mode int

const (
	// ModeAuto enables color when stdout is a terminal and NO_COLOR is unset.
	ModeAuto Mode = iota
	// ModeAlways always emits color.
	ModeAlways
	// ModeNever never emits color.
	ModeNever
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseMode parses a string into a color Mode.
// Returns ModeAuto for empty string. Returns ErrInvalidMode for unknown strings.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", "":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, ErrInvalidMode
	}
}

// Reporter writes analysis output to a single destination.
type Reporter struct {
	out     io.Writer
	colored bool
}

// New creates a Reporter writing to out with the given color mode.
func New(out io.Writer, mode Mode) *Reporter {
	return &Reporter{
		out:     out,
		colored: shouldColor(out, mode),
	}
}

// shouldColor resolves the color mode against the destination and environment.
func shouldColor(out io.Writer, mode Mode) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}

	// NO_COLOR is honored regardless of terminal state.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// paint applies c to text when color is enabled.
func (r *Reporter) paint(c color.Color, text string) string {
	if !r.colored {
		return text
	}
	return c(text)
}

// severityColor maps a severity to its display color.
func severityColor(s analyzer.Severity) color.Color {
	switch s {
	case analyzer.Critical:
		return color.Red
	case analyzer.Warning:
		return color.Yellow
	case analyzer.Info:
		return color.Cyan
	default:
		return color.None
	}
}

// riskColor maps a risk level to its display color.
func riskColor(level analyzer.RiskLevel) color.Color {
	switch level {
	case analyzer.RiskHigh:
		return color.Red
	case analyzer.RiskMedium:
		return color.Yellow
	case analyzer.RiskLow:
		return color.Green
	default:
		return color.None
	}
}

// PrintFindings writes one line per finding, in firing order.
func (r *Reporter) PrintFindings(result *analyzer.Result) {
	findings := result.Findings()
	if len(findings) == 0 {
		fmt.Fprintln(r.out, "No suspicious patterns found.")
		return
	}

	fmt.Fprintln(r.out, r.paint(color.Bold, "Findings:"))
	for _, f := range findings {
		label := r.paint(severityColor(f.Severity), "["+f.Severity.String()+"]")
		fmt.Fprintf(r.out, "  %s line %d: %s\n", label, f.Line, f.Message)
	}
}

// PrintSummary writes the per-severity counts and the derived risk level.
func (r *Reporter) PrintSummary(result *analyzer.Result) {
	fmt.Fprintf(r.out, "%s %d critical, %d warning, %d info\n",
		r.paint(color.Bold, "Summary:"),
		result.CriticalCount(), result.WarningCount(), result.InfoCount())

	level := result.Risk()
	fmt.Fprintf(r.out, "Risk level: %s\n", r.paint(riskColor(level), level.String()))
}

// PrintScript writes the full script with 1-based line numbers, matching
// the numbering used in findings.
func (r *Reporter) PrintScript(script string) {
	fmt.Fprintln(r.out, r.paint(color.Bold, "Script contents:"))
	for i, line := range strings.Split(script, "\n") {
		number := r.paint(color.Gray, fmt.Sprintf("%4d", i+1))
		fmt.Fprintf(r.out, "%s | %s\n", number, line)
	}
}

// Advisory returns the prompt-facing message for a risk level.
func Advisory(level analyzer.RiskLevel) string {
	switch level {
	case analyzer.RiskHigh:
		return "This script contains potentially dangerous operations."
	case analyzer.RiskMedium:
		return "This script requires elevated privileges or modifies system files."
	default:
		return "No major issues detected, but always review scripts before running them."
	}
}

// Confirm prints the advisory for the risk level and asks whether to
// execute. Only "y" or "yes" (case-insensitive) count as consent; anything
// else, including EOF, declines.
func (r *Reporter) Confirm(in io.Reader, level analyzer.RiskLevel) (bool, error) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, r.paint(riskColor(level), Advisory(level)))
	fmt.Fprint(r.out, "Do you want to execute this script? [y/N]: ")

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
