// Package config provides configuration management for seek.
// Configuration is read from ~/.seekrc.yaml; every field has a working
// default so the file is optional.
package config

// Config holds all settings for the interactive session.
type Config struct {
	// Prompt is the string printed before each input line.
	Prompt string `yaml:"prompt"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// BaseURL is the completion service endpoint.
	BaseURL string `yaml:"base_url"`

	// MaxToolIterations bounds the automatic tool-calling loop within a
	// single turn. When the model keeps requesting tools past this count the
	// turn is abandoned with a warning.
	MaxToolIterations int `yaml:"max_tool_iterations"`

	// SearchEnabled asks the completion service to allow server-side search.
	SearchEnabled bool `yaml:"search"`

	// ThinkingEnabled asks the completion service to stream reasoning
	// fragments before the response content.
	ThinkingEnabled bool `yaml:"thinking"`

	// ContextFile names a project context document whose content is appended
	// to the instruction preamble on the first turn. Relative paths resolve
	// against the working directory.
	ContextFile string `yaml:"context_file"`
}

// DefaultMaxToolIterations is used when max_tool_iterations is unset or
// not positive.
const DefaultMaxToolIterations = 10

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Prompt:            "> ",
		LogLevel:          "info",
		BaseURL:           "https://chat.deepseek.com/api/v0",
		MaxToolIterations: DefaultMaxToolIterations,
		SearchEnabled:     true,
		ThinkingEnabled:   true,
		ContextFile:       "AGENTS.md",
	}
}
