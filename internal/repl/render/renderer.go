package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Renderer handles all session output: the streamed assistant message with
// its thinking and response sections, tool status lines, and notices. It
// tracks which section of the current message has been opened so the
// delimiters are printed exactly once per message.
type Renderer struct {
	writer io.Writer

	thinkingStarted bool
	contentStarted  bool
}

// New creates a new Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{writer: w}
}

// BeginMessage resets the per-message section state. Call it before
// consuming a new completion stream.
func (r *Renderer) BeginMessage() {
	r.thinkingStarted = false
	r.contentStarted = false
}

// RenderThinkingFragment streams one reasoning fragment, opening the
// thinking section on the first call.
func (r *Renderer) RenderThinkingFragment(text string) {
	if !r.thinkingStarted {
		fmt.Fprintln(r.writer, ThinkingMarkerStyle.Render("--- Thinking ---"))
		r.thinkingStarted = true
	}
	fmt.Fprint(r.writer, ThinkingStyle.Render(text))
}

// RenderContentFragment streams one response fragment, closing the thinking
// section and opening the response section as needed.
func (r *Renderer) RenderContentFragment(text string) {
	if !r.contentStarted {
		r.closeThinking()
		fmt.Fprintln(r.writer, ResponseMarkerStyle.Render("--- Response ---"))
		r.contentStarted = true
	}
	fmt.Fprint(r.writer, text)
}

// EndMessage closes any open sections and terminates the message output
// with a newline.
func (r *Renderer) EndMessage() {
	r.closeThinking()
	fmt.Fprintln(r.writer)
}

func (r *Renderer) closeThinking() {
	if r.thinkingStarted && !r.contentStarted {
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer, ThinkingMarkerStyle.Render("--- End of thinking ---"))
	}
}

// StartWaitSpinner shows a spinner while waiting for the first stream chunk.
func (r *Renderer) StartWaitSpinner(ctx context.Context) func() {
	return StartSpinner(ctx, r.writer, "thinking...")
}

// RenderToolStart prints the status line for a tool that begins executing.
func (r *Renderer) RenderToolStart(name string) {
	fmt.Fprintf(r.writer, "%s %s\n", ToolPendingStyle.Render(SymbolToolStart), name)
}

// RenderToolResult prints the completion line for a tool, with duration and
// humanized output size.
func (r *Renderer) RenderToolResult(name string, ok bool, output string, duration time.Duration) {
	symbol := SuccessStyle.Render(SymbolToolComplete)
	if !ok {
		symbol = ErrorStyle.Render(SymbolToolFailed)
	}
	meta := DimStyle.Render(fmt.Sprintf("(%s, %s)",
		duration.Round(time.Millisecond),
		humanize.Bytes(uint64(len(output))),
	))
	fmt.Fprintf(r.writer, "%s %s %s\n", symbol, name, meta)
}

// RenderInterrupted prints the notice shown when the user cancels an active
// stream.
func (r *Renderer) RenderInterrupted() {
	r.closeThinking()
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, DimStyle.Render(SymbolNotice+" interrupted"))
}

// RenderNotice prints a secondary informational line.
func (r *Renderer) RenderNotice(text string) {
	fmt.Fprintln(r.writer, DimStyle.Render(SymbolNotice+" "+text))
}

// RenderWarning prints a highlighted warning line.
func (r *Renderer) RenderWarning(text string) {
	fmt.Fprintln(r.writer, ErrorStyle.Render(SymbolToolFailed+" "+text))
}

// RenderBanner prints a startup banner line.
func (r *Renderer) RenderBanner(text string) {
	fmt.Fprintln(r.writer, BannerStyle.Render(text))
}

// RenderPrompt prints the input prompt without a trailing newline.
func (r *Renderer) RenderPrompt(prompt string) {
	fmt.Fprint(r.writer, PromptStyle.Render(prompt))
}
