// Package main is the entry point for the vetsh CLI tool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/user/vetsh/internal/analyzer"
	"github.com/user/vetsh/internal/backend"
	"github.com/user/vetsh/internal/config"
	"github.com/user/vetsh/internal/editor"
	"github.com/user/vetsh/internal/executor"
	"github.com/user/vetsh/internal/fetch"
	"github.com/user/vetsh/internal/logging"
	"github.com/user/vetsh/internal/report"
	"github.com/user/vetsh/internal/shellctx"
)

// Exit codes.
const (
	exitSuccess     = 0
	exitUserError   = 1
	exitSystemError = 2
	exitRiskBlocked = 3
)

// version is set at build time via ldflags: -X main.version=...
var version = "dev"

// flags holds all command-line flags.
type flags struct {
	yes        bool
	noExec     bool
	edit       bool
	backendStr string
	model      string
	colorMode  string
	configPath string
	verbose    bool
	showVer    bool
	url        string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	// Check for subcommands first (before flag parsing).
	if len(args) > 0 {
		switch args[0] {
		case "config":
			return handleConfigCommand(args[1:])
		case "backends":
			return handleBackendsCommand()
		}
	}

	// Parse flags.
	f, err := parseFlags(args)
	if err != nil {
		// If it's a help request, flag package already printed help.
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintf(os.Stderr, "vetsh: %v\n", err)
		return exitUserError
	}

	// Handle --version.
	if f.showVer {
		fmt.Fprintf(stdout, "vetsh version %s\n", version)
		return exitSuccess
	}

	logging.Init(f.verbose)
	defer logging.Sync()

	if f.url == "" {
		fmt.Fprintln(os.Stderr, "vetsh: missing script URL")
		fmt.Fprintln(os.Stderr, "usage: vetsh [flags] <url>")
		return exitUserError
	}

	// Load configuration.
	cfg, err := config.Load(&config.LoadOptions{ConfigPath: f.configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: failed to load config: %v\n", err)
		return exitSystemError
	}

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: invalid config: %v\n", err)
		return exitUserError
	}

	// Resolve color mode: flag overrides config.
	colorStr := cfg.ColorMode
	if f.colorMode != "" {
		colorStr = f.colorMode
	}
	mode, err := report.ParseMode(colorStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: invalid color mode: %s\n", colorStr)
		return exitUserError
	}

	reporter := report.New(stdout, mode)

	// Download the script.
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), cfg.FetchTimeout())
	script, err := fetch.New().Script(fetchCtx, f.url)
	cancelFetch()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "vetsh: download timed out")
			return exitSystemError
		}
		if errors.Is(err, fetch.ErrEmptyScript) {
			fmt.Fprintf(os.Stderr, "vetsh: %s returned an empty script\n", f.url)
			return exitUserError
		}
		fmt.Fprintf(os.Stderr, "vetsh: %v\n", err)
		return exitSystemError
	}

	// Optional interactive edit before analysis. Analysis and execution
	// both see the edited script, never the original.
	if f.edit {
		ed := editor.NewEditor(cfg.Editor.Editor)
		script, err = ed.EditScript(context.Background(), script)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vetsh: editing script: %v\n", err)
			return exitSystemError
		}
	}

	// Analyze and report.
	result := analyzer.Scan(script)

	reporter.PrintScript(script)
	fmt.Fprintln(stdout, "")
	reporter.PrintFindings(result)
	fmt.Fprintln(stdout, "")
	reporter.PrintSummary(result)

	risk := result.Risk()

	// AI second opinion, when enabled and a key is available.
	if cfg.Safety.ShowAIReview {
		runAIReview(f, cfg, stdout, script)
	}

	if risk == analyzer.RiskHigh && cfg.Safety.BlockHighRisk {
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "vetsh: execution blocked: script risk level is HIGH (safety.block_high_risk)")
		return exitRiskBlocked
	}

	if f.noExec {
		return exitSuccess
	}

	// Confirmation prompt, unless --yes.
	if !f.yes {
		ok, err := reporter.Confirm(stdin, risk)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vetsh: %v\n", err)
			return exitSystemError
		}
		if !ok {
			fmt.Fprintln(stdout, "Aborted.")
			return exitSuccess
		}
	}

	// Execute with the user's terminal attached.
	runner := executor.New()
	if err := runner.Run(context.Background(), cfg.Execute.Shell, script); err != nil {
		if code := executor.ExitCode(err); code >= 0 {
			// The script ran and failed; propagate its exit code.
			return code
		}
		fmt.Fprintf(os.Stderr, "vetsh: running script: %v\n", err)
		return exitSystemError
	}

	return exitSuccess
}

// runAIReview asks the configured LLM backend for a brief assessment of the
// script and prints it. Review failures never abort the run; the
// deterministic analysis above is the authoritative signal.
func runAIReview(f *flags, cfg *config.Config, stdout io.Writer, script string) {
	backendName := cfg.Backend
	if f.backendStr != "" {
		backendName = f.backendStr
	}

	if cfg.GetAPIKey(backendName) == "" {
		logging.L().Debugw("skipping AI review: no API key", "backend", backendName)
		return
	}

	modelName := cfg.GetModel(backendName)
	if f.model != "" {
		modelName = f.model
	}

	be, err := createBackend(backendName, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	req := &backend.Request{
		Script:  script,
		URL:     f.url,
		Context: shellctx.GatherContext(),
		Model:   modelName,
	}

	if f.verbose {
		fmt.Fprintf(os.Stderr, "vetsh: using backend=%s model=%s\n", backendName, modelName)
	}

	resp, err := be.ReviewScript(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintln(os.Stderr, "vetsh: AI review timed out")
		case errors.Is(err, backend.ErrNoAPIKey):
			fmt.Fprintf(os.Stderr, "vetsh: no API key configured for backend %q\n", backendName)
			fmt.Fprintf(os.Stderr, "  Set %s_API_KEY environment variable or add api_key to config\n", strings.ToUpper(backendName))
		default:
			fmt.Fprintf(os.Stderr, "vetsh: AI review failed: %v\n", err)
		}
		return
	}

	if f.verbose {
		fmt.Fprintf(os.Stderr, "vetsh: tokens used: %d\n", resp.TokensUsed)
	}

	fmt.Fprintln(stdout, "")
	fmt.Fprintf(stdout, "AI review (%s):\n", resp.Model)
	for _, line := range strings.Split(resp.Assessment, "\n") {
		fmt.Fprintf(stdout, "  %s\n", line)
	}
}

// parseFlags parses command-line flags and returns a flags struct.
func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("vetsh", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.BoolVar(&f.yes, "yes", false, "Skip the confirmation prompt")
	fs.BoolVar(&f.noExec, "no-exec", false, "Analyze and report only, never execute")
	fs.BoolVar(&f.edit, "edit", false, "Open the script in $EDITOR before analysis")
	fs.StringVar(&f.backendStr, "backend", "", "Override AI review backend (anthropic|openai|openrouter)")
	fs.StringVar(&f.model, "model", "", "Override AI review model")
	fs.StringVar(&f.colorMode, "color", "", "Color output: auto|always|never")
	fs.StringVar(&f.configPath, "config", "", "Config file path")
	fs.BoolVar(&f.verbose, "verbose", false, "Verbose output to stderr")
	fs.BoolVar(&f.showVer, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "vetsh - Inspect a remote shell script before running it")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  vetsh [flags] <url>")
		fmt.Fprintln(os.Stderr, "  vetsh [command]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  config           Show current configuration")
		fmt.Fprintln(os.Stderr, "  config init      Create default config file")
		fmt.Fprintln(os.Stderr, "  backends         List available AI review backends")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return nil, fmt.Errorf("expected one script URL, got %d arguments", len(rest))
	}
	if len(rest) == 1 {
		f.url = rest[0]
	}

	return f, nil
}

// createBackend creates an LLM backend based on the configured backend name.
func createBackend(name string, cfg *config.Config) (backend.Backend, error) {
	switch name {
	case "anthropic":
		return backend.NewAnthropicBackend(
			backend.WithAnthropicAPIKey(cfg.Anthropic.APIKey),
			backend.WithAnthropicModel(cfg.Anthropic.Model),
			backend.WithAnthropicMaxTokens(cfg.Advanced.MaxTokens),
		), nil

	case "openai":
		return backend.NewOpenAIBackend(
			backend.WithOpenAIAPIKey(cfg.OpenAI.APIKey),
			backend.WithOpenAIModel(cfg.OpenAI.Model),
			backend.WithOpenAIMaxTokens(cfg.Advanced.MaxTokens),
		), nil

	case "openrouter":
		return backend.NewOpenRouterBackend(
			backend.WithOpenRouterAPIKey(cfg.OpenRouter.APIKey),
			backend.WithOpenRouterModel(cfg.OpenRouter.Model),
			backend.WithOpenRouterMaxTokens(cfg.Advanced.MaxTokens),
		), nil

	default:
		return nil, fmt.Errorf("unknown backend: %s (valid: anthropic, openai, openrouter)", name)
	}
}

// handleConfigCommand handles the 'config' and 'config init' subcommands.
func handleConfigCommand(args []string) int {
	// Check for 'config init' subcommand.
	if len(args) > 0 && args[0] == "init" {
		return handleConfigInit()
	}

	// Show current configuration.
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: failed to load config: %v\n", err)
		return exitSystemError
	}

	fmt.Fprintln(os.Stderr, "Current configuration:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "  Backend:         %s\n", cfg.Backend)
	fmt.Fprintf(os.Stderr, "  Color Mode:      %s\n", cfg.ColorMode)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [anthropic]")
	fmt.Fprintf(os.Stderr, "    Model:         %s\n", cfg.Anthropic.Model)
	fmt.Fprintf(os.Stderr, "    API Key:       %s\n", maskAPIKey(cfg.Anthropic.APIKey))
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [openai]")
	fmt.Fprintf(os.Stderr, "    Model:         %s\n", cfg.OpenAI.Model)
	fmt.Fprintf(os.Stderr, "    API Key:       %s\n", maskAPIKey(cfg.OpenAI.APIKey))
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [openrouter]")
	fmt.Fprintf(os.Stderr, "    Model:         %s\n", cfg.OpenRouter.Model)
	fmt.Fprintf(os.Stderr, "    API Key:       %s\n", maskAPIKey(cfg.OpenRouter.APIKey))
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [safety]")
	fmt.Fprintf(os.Stderr, "    Block High Risk: %t\n", cfg.Safety.BlockHighRisk)
	fmt.Fprintf(os.Stderr, "    Show AI Review:  %t\n", cfg.Safety.ShowAIReview)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [execute]")
	fmt.Fprintf(os.Stderr, "    Shell:         %s\n", cfg.Execute.Shell)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "  [advanced]")
	fmt.Fprintf(os.Stderr, "    Fetch Timeout:   %ds\n", cfg.Advanced.FetchTimeoutSeconds)
	fmt.Fprintf(os.Stderr, "    Request Timeout: %ds\n", cfg.Advanced.RequestTimeoutSeconds)
	fmt.Fprintf(os.Stderr, "    Max Tokens:      %d\n", cfg.Advanced.MaxTokens)

	return exitSuccess
}

// handleConfigInit handles the 'config init' subcommand.
func handleConfigInit() int {
	path, err := config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: %v\n", err)
		return exitUserError
	}
	fmt.Fprintf(os.Stderr, "Created config file: %s\n", path)
	return exitSuccess
}

// handleBackendsCommand handles the 'backends' subcommand.
func handleBackendsCommand() int {
	cfg, err := config.Load(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vetsh: failed to load config: %v\n", err)
		return exitSystemError
	}

	fmt.Fprintln(os.Stderr, "Available backends:")
	fmt.Fprintln(os.Stderr, "")

	type entry struct {
		name  string
		key   string
		model string
	}
	entries := []entry{
		{"anthropic", cfg.Anthropic.APIKey, cfg.Anthropic.Model},
		{"openai", cfg.OpenAI.APIKey, cfg.OpenAI.Model},
		{"openrouter", cfg.OpenRouter.APIKey, cfg.OpenRouter.Model},
	}

	for _, e := range entries {
		status := "not configured"
		if e.key != "" {
			status = "configured"
		}
		activeMarker := ""
		if cfg.Backend == e.name {
			activeMarker = " (active)"
		}
		fmt.Fprintf(os.Stderr, "  %s%s\n", e.name, activeMarker)
		fmt.Fprintf(os.Stderr, "    Status: %s\n", status)
		fmt.Fprintf(os.Stderr, "    Model:  %s\n", e.model)
		fmt.Fprintln(os.Stderr, "")
	}

	return exitSuccess
}

// maskAPIKey returns a masked version of an API key for display.
// Never logs or prints the full key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
