// Package fetch downloads a script body by shelling out to curl, falling
// back to wget when curl is not installed. The analysis engine only ever
// sees the returned text; it has no idea where it came from.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/user/vetsh/internal/logging"
)

// Common errors returned by the fetcher.
var (
	// ErrEmptyScript is returned when the fetched body is empty. Rejecting
	// an empty script is this layer's policy; the scanner itself accepts
	// any text.
	ErrEmptyScript = errors.New("fetched script is empty")

	// ErrNoDownloader is returned when neither curl nor wget is available.
	ErrNoDownloader = errors.New("no downloader available (need curl or wget)")
)

// Fetcher downloads script bodies via an external downloader process.
type Fetcher struct {
	lookPath func(file string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Option is a functional option for configuring a Fetcher.
type Option func(*Fetcher)

// WithLookPath overrides PATH lookup (useful for testing).
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(f *Fetcher) {
		f.lookPath = fn
	}
}

// WithCommand overrides subprocess construction (useful for testing).
func WithCommand(fn func(ctx context.Context, name string, args ...string) *exec.Cmd) Option {
	return func(f *Fetcher) {
		f.command = fn
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		lookPath: exec.LookPath,
		command:  exec.CommandContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// downloader picks the command line for the available download tool.
func (f *Fetcher) downloader() (name string, args []string, err error) {
	if _, err := f.lookPath("curl"); err == nil {
		return "curl", []string{"-fsSL", "--"}, nil
	}
	if _, err := f.lookPath("wget"); err == nil {
		return "wget", []string{"-qO-", "--"}, nil
	}
	return "", nil, ErrNoDownloader
}

// Script fetches the script body at url. The body is returned byte for byte
// as the downloader produced it; a body that is empty or whitespace-only is
// rejected with ErrEmptyScript.
func (f *Fetcher) Script(ctx context.Context, url string) (string, error) {
	name, args, err := f.downloader()
	if err != nil {
		return "", err
	}

	logging.L().Debugw("fetching script", "tool", name, "url", url)

	cmd := f.command(ctx, name, append(args, url)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
		}
		if msg := firstLine(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return "", fmt.Errorf("running %s: %w", name, err)
	}

	body := stdout.String()
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyScript
	}

	logging.L().Debugw("fetched script", "bytes", len(body))
	return body, nil
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
