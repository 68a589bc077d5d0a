// Package render provides styled terminal output for the interactive
// session: streamed thinking and response sections, tool status lines, and
// the waiting spinner.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI colors used across the session output
const (
	ColorCyan   = lipgloss.Color("12") // prompts and banners
	ColorYellow = lipgloss.Color("11") // section markers, tool pending
	ColorGreen  = lipgloss.Color("10") // response marker, success
	ColorRed    = lipgloss.Color("9")  // errors
	ColorGray   = lipgloss.Color("8")  // thinking stream, meta info
)

// Symbols used in tool status lines
const (
	SymbolToolStart    = "▶" // tool execution started
	SymbolToolComplete = "✓" // tool succeeded
	SymbolToolFailed   = "✗" // tool failed
	SymbolNotice       = "→" // system notice
)

// Style definitions using Lip Gloss
var (
	// PromptStyle is used for the input prompt.
	PromptStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)

	// BannerStyle is used for startup banner lines.
	BannerStyle = lipgloss.NewStyle().Foreground(ColorCyan)

	// ThinkingMarkerStyle is used for the thinking section delimiters.
	ThinkingMarkerStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// ThinkingStyle dims the streamed reasoning fragments.
	ThinkingStyle = lipgloss.NewStyle().Foreground(ColorGray)

	// ResponseMarkerStyle is used for the response section delimiter.
	ResponseMarkerStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// ToolPendingStyle is used when a tool starts executing.
	ToolPendingStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	// SuccessStyle is used for success indicators.
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	// ErrorStyle is used for error indicators.
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

	// DimStyle is used for secondary information like timing.
	DimStyle = lipgloss.NewStyle().Foreground(ColorGray)
)
