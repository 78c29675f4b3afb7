// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultConfigTOML is the default configuration template for `config init`.
const DefaultConfigTOML = `# vetsh configuration file
# See: https://github.com/user/vetsh

# Default backend for AI review: anthropic | openai | openrouter
backend = "anthropic"

# Color output: "auto" = color when stdout is a terminal,
# "always" = force color, "never" = plain text
color_mode = "auto"

[anthropic]
# API key (or use ANTHROPIC_API_KEY env var)
api_key = ""
# Model to use (any valid Anthropic model)
model = "claude-haiku-4-5-20251001"

[openai]
# API key (or use OPENAI_API_KEY env var)
api_key = ""
# Model to use (any valid OpenAI model)
model = "gpt-5o"

[openrouter]
# API key (or use OPENROUTER_API_KEY env var)
api_key = ""
# Model to use (any model available on OpenRouter)
model = "anthropic/claude-haiku-4-5-20251001"

[safety]
# Refuse to execute scripts assessed as HIGH risk (exit code 3)
block_high_risk = false
# Request an AI second opinion on the script when a key is configured
show_ai_review = true

[execute]
# Shell used to run the script after confirmation
shell = "bash"

[editor]
# Override $EDITOR/$VISUAL for --edit (uncomment to use)
# editor = "nvim"

[advanced]
# Script download timeout in seconds
fetch_timeout_seconds = 60
# AI review API call timeout in seconds
request_timeout_seconds = 30
# Maximum tokens for the AI review response
max_tokens = 512
`

// Config represents the full configuration for vetsh.
type Config struct {
	Backend    string           `toml:"backend"`
	ColorMode  string           `toml:"color_mode"`
	Anthropic  AnthropicConfig  `toml:"anthropic"`
	OpenAI     OpenAIConfig     `toml:"openai"`
	OpenRouter OpenRouterConfig `toml:"openrouter"`
	Safety     SafetyConfig     `toml:"safety"`
	Execute    ExecuteConfig    `toml:"execute"`
	Editor     EditorConfig     `toml:"editor"`
	Advanced   AdvancedConfig   `toml:"advanced"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SafetyConfig holds safety check configuration.
type SafetyConfig struct {
	BlockHighRisk bool `toml:"block_high_risk"`
	ShowAIReview  bool `toml:"show_ai_review"`
}

// ExecuteConfig holds script execution configuration.
type ExecuteConfig struct {
	Shell string `toml:"shell"`
}

// EditorConfig holds editor configuration.
type EditorConfig struct {
	Editor string `toml:"editor"`
}

// AdvancedConfig holds advanced configuration options.
type AdvancedConfig struct {
	FetchTimeoutSeconds   int `toml:"fetch_timeout_seconds"`
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	MaxTokens             int `toml:"max_tokens"`
}

// FetchTimeout returns the script download timeout as a time.Duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Advanced.FetchTimeoutSeconds) * time.Second
}

// RequestTimeout returns the AI review API timeout as a time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Advanced.RequestTimeoutSeconds) * time.Second
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Backend:   "anthropic",
		ColorMode: "auto",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku-4-5-20251001",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-5o",
		},
		OpenRouter: OpenRouterConfig{
			Model: "anthropic/claude-haiku-4-5-20251001",
		},
		Safety: SafetyConfig{
			BlockHighRisk: false,
			ShowAIReview:  true,
		},
		Execute: ExecuteConfig{
			Shell: "bash",
		},
		Advanced: AdvancedConfig{
			FetchTimeoutSeconds:   60,
			RequestTimeoutSeconds: 30,
			MaxTokens:             512,
		},
	}
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ConfigPath is an explicit path to a config file (highest priority).
	ConfigPath string
}

// Load loads configuration from the appropriate source with the following priority:
// 1. --config flag (via LoadOptions.ConfigPath)
// 2. $VETSH_CONFIG env var
// 3. $XDG_CONFIG_HOME/vetsh/config.toml
// 4. ~/.config/vetsh/config.toml
//
// Environment variables override file config for API keys and backend selection.
func Load(opts *LoadOptions) (*Config, error) {
	cfg := Default()

	// Determine config file path
	configPath := findConfigPath(opts)

	// Load from file if it exists
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// findConfigPath determines the config file path based on priority.
func findConfigPath(opts *LoadOptions) string {
	// Priority 1: Explicit path from --config flag
	if opts != nil && opts.ConfigPath != "" {
		return opts.ConfigPath
	}

	// Priority 2: VETSH_CONFIG env var
	if envPath := os.Getenv("VETSH_CONFIG"); envPath != "" {
		return envPath
	}

	// Priority 3: $XDG_CONFIG_HOME/vetsh/config.toml
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		xdgPath := filepath.Join(xdgConfigHome, "vetsh", "config.toml")
		if fileExists(xdgPath) {
			return xdgPath
		}
	}

	// Priority 4: ~/.config/vetsh/config.toml
	if homeDir, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(homeDir, ".config", "vetsh", "config.toml")
		if fileExists(homePath) {
			return homePath
		}
	}

	return ""
}

// loadFromFile loads configuration from a TOML file.
func loadFromFile(cfg *Config, path string) error {
	// Check file permissions and warn if not 0600
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}

	// Check permissions (Unix-only, ignore on Windows)
	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		// File is readable by group or others - warn to stderr
		fmt.Fprintf(os.Stderr, "warning: config file %s has insecure permissions %o, should be 0600\n", path, mode)
	}

	// Parse TOML
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parse TOML: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	// API keys from environment
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.OpenRouter.APIKey = key
	}

	// Backend override from environment
	if backend := os.Getenv("VETSH_BACKEND"); backend != "" {
		cfg.Backend = backend
	}
}

// fileExists returns true if the file at path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// GetConfigDir returns the directory where config should be stored.
// Uses $XDG_CONFIG_HOME/vetsh if set, otherwise ~/.config/vetsh.
func GetConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "vetsh"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "vetsh"), nil
}

// InitConfig creates a default configuration file at the standard location.
// Returns an error if the file already exists.
func InitConfig() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// Create directory with secure permissions if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.toml")

	// Don't overwrite existing config
	if fileExists(configPath) {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	// Write default config with 0600 permissions
	if err := os.WriteFile(configPath, []byte(DefaultConfigTOML), 0600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// GetAPIKey returns the API key for the specified backend.
// Returns empty string if no key is configured.
func (c *Config) GetAPIKey(backend string) string {
	switch backend {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	default:
		return ""
	}
}

// GetModel returns the model for the specified backend.
func (c *Config) GetModel(backend string) string {
	switch backend {
	case "anthropic":
		return c.Anthropic.Model
	case "openai":
		return c.OpenAI.Model
	case "openrouter":
		return c.OpenRouter.Model
	default:
		return ""
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Validate backend
	switch c.Backend {
	case "anthropic", "openai", "openrouter":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be anthropic, openai, or openrouter)", c.Backend)
	}

	// Validate color mode
	switch c.ColorMode {
	case "auto", "always", "never":
		// valid
	default:
		return fmt.Errorf("invalid color_mode: %s (must be auto, always, or never)", c.ColorMode)
	}

	if c.Execute.Shell == "" {
		return fmt.Errorf("execute shell must not be empty")
	}

	// Validate timeouts
	if c.Advanced.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch_timeout_seconds must be positive")
	}
	if c.Advanced.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}

	// Validate max_tokens
	if c.Advanced.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	return nil
}
