// Package backend defines the interface for AI review providers and shared
// types. The AI review is an optional second opinion on a fetched script —
// the deterministic analyzer always runs and alone drives the execution
// prompt, so a backend failure never blocks the tool.
package backend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Common errors returned by backends.
var (
	// ErrNoAPIKey is returned when no API key is configured for a backend.
	ErrNoAPIKey = errors.New("no API key configured")

	// ErrEmptyScript is returned when the request carries no script text.
	ErrEmptyScript = errors.New("empty script")

	// ErrEmptyResponse is returned when the LLM returns an empty response.
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// Backend defines the contract for AI review providers.
type Backend interface {
	// ReviewScript sends the script to the LLM and returns a short security
	// assessment. The context should be used for cancellation and timeouts.
	ReviewScript(ctx context.Context, request *Request) (*Response, error)

	// Name returns the backend identifier for logging/debugging.
	Name() string
}

// Request contains the input for a script review.
type Request struct {
	// Script is the full fetched script text.
	Script string

	// URL is where the script came from, included in the prompt so the
	// model can weigh the source.
	URL string

	// Context provides optional host context (pwd, shell type, OS).
	// May be nil if context is not available or disabled.
	Context *ShellContext

	// Model overrides the default model for this request.
	// If empty, the backend's default model is used.
	Model string
}

// Response contains the result of a script review.
type Response struct {
	// Assessment is the model's short security assessment, cleaned of
	// markdown wrapping.
	Assessment string

	// Model is the model that produced the assessment.
	Model string

	// TokensUsed is the number of tokens consumed (for cost tracking).
	// May be 0 if not available from the API.
	TokensUsed int
}

// ShellContext provides context about the host the script would run on.
// This information is included in the prompt so the assessment can account
// for the platform.
type ShellContext struct {
	// WorkingDir is the current working directory (pwd).
	WorkingDir string

	// Shell is the shell type, e.g., "zsh", "bash".
	Shell string

	// OS is the operating system, e.g., "darwin", "linux".
	OS string
}

// SystemPromptTemplate is the shared system prompt template for all backends.
// It instructs the LLM to produce a short, plain-text security assessment.
const SystemPromptTemplate = `You are a shell script security reviewer. The user fetched a script from the internet and is deciding whether to run it.

Rules:
1. Output a plain-text assessment of at most 5 short lines - no markdown, no code fences
2. Name the specific risky operations you see, with their line numbers when possible
3. End with exactly one verdict line: "Verdict: looks safe", "Verdict: review carefully", or "Verdict: do not run"
4. Judge only what the script does; do not speculate about intent
5. Do not suggest fixes or rewrites

Context for the host that would run the script:
- Working directory: {{.WorkingDir}}
- Shell: {{.Shell}}
- OS: {{.OS}}`

// SystemPromptNoContext is the system prompt when host context is not available.
const SystemPromptNoContext = `You are a shell script security reviewer. The user fetched a script from the internet and is deciding whether to run it.

Rules:
1. Output a plain-text assessment of at most 5 short lines - no markdown, no code fences
2. Name the specific risky operations you see, with their line numbers when possible
3. End with exactly one verdict line: "Verdict: looks safe", "Verdict: review carefully", or "Verdict: do not run"
4. Judge only what the script does; do not speculate about intent
5. Do not suggest fixes or rewrites`

// buildUserMessage assembles the review request sent as the user turn.
func buildUserMessage(request *Request) string {
	var sb strings.Builder
	if request.URL != "" {
		fmt.Fprintf(&sb, "Script fetched from: %s\n\n", request.URL)
	}
	sb.WriteString("Script:\n")
	sb.WriteString(request.Script)
	return sb.String()
}

// codeFenceRegex matches markdown code fences with optional language
// specifier, in case the model ignores the no-markdown instruction.
var codeFenceRegex = regexp.MustCompile("(?s)^\\s*```[a-zA-Z0-9_-]*\\n?(.*?)\\n?```\\s*$")

// cleanAssessment strips markdown wrapping the model may add despite the
// prompt, then trims surrounding whitespace.
func cleanAssessment(raw string) string {
	result := raw
	if matches := codeFenceRegex.FindStringSubmatch(result); matches != nil {
		result = matches[1]
	}
	return strings.TrimSpace(result)
}
