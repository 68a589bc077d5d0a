package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/atinylittleshell/seek/internal/core"
)

// Loader handles loading and parsing of .seekrc.yaml configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from a .seekrc.yaml file.
// If the file doesn't exist, returns default configuration with no error.
// Malformed content is reported through LoadResult.Errors and the defaults
// are kept, so a broken config file never prevents startup.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from YAML source.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	if err := yaml.Unmarshal([]byte(source), result.Config); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		result.Config = DefaultConfig()
		return result, nil
	}

	l.normalize(result)

	return result, nil
}

// LoadDefaultConfigPath loads configuration from the default path
// (~/.seekrc.yaml).
func (l *Loader) LoadDefaultConfigPath() (*LoadResult, error) {
	configPath := filepath.Join(core.HomeDir(), ".seekrc.yaml")
	return l.LoadFromFile(configPath)
}

// normalize backfills zero values with defaults and flags out-of-range
// settings as non-fatal errors.
func (l *Loader) normalize(result *LoadResult) {
	defaults := DefaultConfig()
	cfg := result.Config

	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = defaults.Prompt
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.MaxToolIterations <= 0 {
		if cfg.MaxToolIterations < 0 {
			result.Errors = append(result.Errors,
				fmt.Errorf("max_tool_iterations must be positive, got %d", cfg.MaxToolIterations))
		}
		cfg.MaxToolIterations = defaults.MaxToolIterations
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
		if cfg.LogLevel == "" {
			cfg.LogLevel = defaults.LogLevel
		}
	default:
		result.Errors = append(result.Errors,
			fmt.Errorf("unknown log_level %q", cfg.LogLevel))
		cfg.LogLevel = defaults.LogLevel
	}
}

// ErrNoToken is returned when no API token can be resolved.
var ErrNoToken = errors.New("no API token found: set DEEPSEEK_TOKEN or write the token to ~/.seek/token")

// ResolveToken resolves the completion service credential. The DEEPSEEK_TOKEN
// environment variable wins; the fallback is the token file in the data
// directory.
func ResolveToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv("DEEPSEEK_TOKEN")); token != "" {
		return token, nil
	}

	data, err := os.ReadFile(core.TokenFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// LoadProjectContext reads the optional project context document. It returns
// an empty string when the file is missing or blank; only the non-blank
// content participates in the first-turn preamble.
func LoadProjectContext(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	content := strings.TrimSpace(string(data))
	return content
}
