// Package repl implements the interactive session: it collects user input,
// drives the streaming completion service, routes parsed tool invocations
// through the registry, and folds tool results back into the conversation
// until the assistant answers without requesting further tools.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinylittleshell/seek/internal/agent"
	"github.com/atinylittleshell/seek/internal/config"
	"github.com/atinylittleshell/seek/internal/deepseek"
	"github.com/atinylittleshell/seek/internal/history"
	"github.com/atinylittleshell/seek/internal/repl/render"
)

// timeNow is a variable that can be overridden for testing.
var timeNow = time.Now

// correctiveReprompt is sent when the service commits an empty message.
const correctiveReprompt = "Your previous response was empty. Please provide a non-empty response."

// Options configures a new REPL.
type Options struct {
	Client   Completer
	Registry *agent.Registry
	Config   *config.Config
	History  *history.HistoryManager // optional
	Logger   *zap.Logger

	// ChatID is the conversation to attach to, created or resumed by the
	// caller before the REPL starts.
	ChatID string

	// ParentID is the thread pointer carried over when resuming an existing
	// conversation. Nil for a fresh chat.
	ParentID *int64

	// Input and Output default to stdin/stdout.
	Input  io.Reader
	Output io.Writer
}

// REPL is the turn controller. It owns the thread pointer: the id of the
// last committed assistant message, which anchors every completion call and
// only advances when a complete final message has been received.
type REPL struct {
	client     Completer
	registry   *agent.Registry
	cfg        *config.Config
	history    *history.HistoryManager
	logger     *zap.Logger
	renderer   *render.Renderer
	interrupts *InterruptBroadcaster

	input io.Reader

	chatID    string
	parentID  *int64
	firstTurn bool
}

// NewREPL creates a REPL from options, applying defaults.
func NewREPL(opts Options) *REPL {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	input := opts.Input
	if input == nil {
		input = os.Stdin
	}
	var output io.Writer = os.Stdout
	if opts.Output != nil {
		output = opts.Output
	}

	return &REPL{
		client:     opts.Client,
		registry:   opts.Registry,
		cfg:        cfg,
		history:    opts.History,
		logger:     logger,
		renderer:   render.New(output),
		interrupts: NewInterruptBroadcaster(),
		input:      input,
		chatID:     opts.ChatID,
		parentID:   opts.ParentID,
		firstTurn:  opts.ParentID == nil,
	}
}

// Run drives the session until the user quits or input ends. Blocking line
// reads happen on their own goroutine so the cancellation-aware paths stay
// responsive.
func (r *REPL) Run(ctx context.Context) error {
	r.interrupts.Watch(ctx)

	r.renderer.RenderBanner(fmt.Sprintf("Connected to chat %s", r.chatID))
	r.renderer.RenderBanner("Type your messages ('/exit' to quit, '/help' for commands)")

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.input)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		r.renderer.RenderPrompt(r.cfg.Prompt)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
			if !ok {
				// End of input.
				return nil
			}
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, err := r.handleBuiltinCommand(input)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		if err := r.processTurn(ctx, input); err != nil {
			// Transport faults from the completion collaborator are external
			// faults and terminate the session.
			return err
		}
	}
}

// processTurn runs one full cycle: send the user input, consume the stream,
// then keep executing requested tools and re-prompting until the assistant
// answers without tool calls or the iteration bound is hit. Interrupts
// abandon the turn without committing anything.
func (r *REPL) processTurn(ctx context.Context, input string) error {
	if r.history != nil {
		if err := r.history.Record(r.chatID, input); err != nil {
			r.logger.Warn("failed to record history", zap.Error(err))
		}
	}

	prompt := input
	if r.firstTurn {
		prompt = r.firstTurnPrompt(input)
	}

	msg, err := r.collectStream(ctx, prompt)
	if errors.Is(err, ErrInterrupted) {
		r.renderer.RenderInterrupted()
		return nil
	}
	if err != nil {
		return err
	}
	r.commit(msg)

	startTime := timeNow()

	for iteration := 0; iteration < r.cfg.MaxToolIterations; iteration++ {
		if strings.TrimSpace(msg.Content) == "" {
			// Never parse an empty message for tools; ask for a real one.
			r.logger.Debug("empty assistant message, sending corrective re-prompt")
			msg, err = r.collectStream(ctx, correctiveReprompt)
			if errors.Is(err, ErrInterrupted) {
				// The corrective step is abandoned without the
				// interruption notice.
				return nil
			}
			if err != nil {
				return err
			}
			r.commit(msg)
			continue
		}

		invocations := agent.Parse(msg.Content)
		if len(invocations) == 0 {
			r.logger.Debug("turn complete",
				zap.Int("iterations", iteration),
				zap.Duration("duration", timeNow().Sub(startTime)),
			)
			return nil
		}

		results := r.executeInvocations(ctx, invocations)
		followUp := strings.Join(results, "\n\n") + "\n\n" + agent.ContinuationInstruction

		msg, err = r.collectStream(ctx, followUp)
		if errors.Is(err, ErrInterrupted) {
			r.renderer.RenderInterrupted()
			return nil
		}
		if err != nil {
			return err
		}
		r.commit(msg)
	}

	r.renderer.RenderWarning(fmt.Sprintf(
		"reached the maximum of %d tool iterations for this turn", r.cfg.MaxToolIterations))
	r.logger.Warn("tool iteration limit reached",
		zap.Int("maxIterations", r.cfg.MaxToolIterations))
	return nil
}

// commit advances the thread pointer to a fully received assistant message.
func (r *REPL) commit(msg *deepseek.Message) {
	if msg.ID != nil {
		r.parentID = msg.ID
	}
	r.firstTurn = false
}

// executeInvocations runs the parsed tool calls strictly sequentially, in
// parsed order, because later calls may depend on earlier calls' filesystem
// effects. Failures are captured as labeled result text, never raised.
func (r *REPL) executeInvocations(ctx context.Context, invocations []agent.Invocation) []string {
	results := make([]string, 0, len(invocations))

	for _, inv := range invocations {
		r.renderer.RenderToolStart(inv.Name)
		start := timeNow()

		output, err := r.registry.Execute(ctx, inv.Name, inv.Arg)
		duration := timeNow().Sub(start)

		if err != nil {
			r.renderer.RenderToolResult(inv.Name, false, err.Error(), duration)
			r.renderer.RenderNotice(err.Error())
			results = append(results, fmt.Sprintf("TOOL %s failed: %v", inv.Name, err))
			continue
		}

		r.renderer.RenderToolResult(inv.Name, true, output, duration)
		results = append(results, fmt.Sprintf("TOOL RESULT for %s:\n%s", inv.Name, output))
	}

	return results
}

// firstTurnPrompt prepends the instruction preamble, and the project context
// document when one is present and non-blank, to the first user message.
func (r *REPL) firstTurnPrompt(input string) string {
	var sb strings.Builder
	sb.WriteString(r.registry.Preamble())

	if doc := config.LoadProjectContext(r.cfg.ContextFile); doc != "" {
		sb.WriteString("\n\nProject context:\n")
		sb.WriteString(doc)
	}

	sb.WriteString("\n\nUser: ")
	sb.WriteString(input)
	return sb.String()
}
