package repl

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinylittleshell/seek/internal/agent"
	"github.com/atinylittleshell/seek/internal/config"
	"github.com/atinylittleshell/seek/internal/deepseek"
)

// fakeCompleter replays scripted assistant replies. Each stream yields one
// content chunk and the final message, with server-assigned incrementing
// message ids. When the script runs out the last reply repeats.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []string

	prompts []string
	parents []*int64
	nextID  int64
}

func (f *fakeCompleter) CreateChat(ctx context.Context) (string, error) {
	return "chat-test", nil
}

func (f *fakeCompleter) ResumeChat(ctx context.Context, chatID string) (*int64, error) {
	return nil, nil
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, request deepseek.Request) (<-chan deepseek.StreamEvent, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, request.Prompt)
	f.parents = append(f.parents, request.ParentID)

	idx := len(f.prompts) - 1
	reply := f.replies[len(f.replies)-1]
	if idx < len(f.replies) {
		reply = f.replies[idx]
	}
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	events := make(chan deepseek.StreamEvent, 2)
	if reply != "" {
		events <- deepseek.StreamEvent{Chunk: deepseek.Chunk{Kind: deepseek.ChunkContent, Text: reply}}
	}
	events <- deepseek.StreamEvent{Chunk: deepseek.Chunk{
		Kind:    deepseek.ChunkFinal,
		Message: &deepseek.Message{ID: &id, Content: reply},
	}}
	close(events)
	return events, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeCompleter) prompt(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[i]
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ContextFile = ""
	return cfg
}

func testRegistry() *agent.Registry {
	return agent.NewRegistry(nil,
		agent.Tool{
			Name:  "echo",
			Usage: "<text> : echoes its argument",
			Run: func(ctx context.Context, arg string) (string, error) {
				return arg, nil
			},
		},
		agent.Tool{
			Name:  "bad",
			Usage: ": always fails",
			Run: func(ctx context.Context, arg string) (string, error) {
				return "", errors.New("boom")
			},
		},
	)
}

func newTestREPL(fake Completer, cfg *config.Config, input string) (*REPL, *bytes.Buffer) {
	var output bytes.Buffer
	r := NewREPL(Options{
		Client:   fake,
		Registry: testRegistry(),
		Config:   cfg,
		ChatID:   "chat-test",
		Input:    strings.NewReader(input),
		Output:   &output,
	})
	return r, &output
}

func TestProcessTurn_FinalAnswer(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"All done."}}
	r, output := newTestREPL(fake, testConfig(), "")

	err := r.processTurn(context.Background(), "hello")

	require.NoError(t, err)
	require.Equal(t, 1, fake.callCount())

	// The first turn carries the instruction preamble and the user input.
	first := fake.prompt(0)
	assert.Contains(t, first, "You are an assistant")
	assert.Contains(t, first, "User: hello")

	require.NotNil(t, r.parentID)
	assert.Equal(t, int64(1), *r.parentID)
	assert.Contains(t, output.String(), "All done.")
}

func TestProcessTurn_SecondTurnSendsRawInput(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"first", "second"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	require.NoError(t, r.processTurn(context.Background(), "one"))
	require.NoError(t, r.processTurn(context.Background(), "two"))

	assert.Equal(t, "two", fake.prompt(1))
}

func TestProcessTurn_ToolLoop(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"TOOL: echo ping", "The answer."}}
	r, _ := newTestREPL(fake, testConfig(), "")

	err := r.processTurn(context.Background(), "do a thing")

	require.NoError(t, err)
	require.Equal(t, 2, fake.callCount())

	followUp := fake.prompt(1)
	assert.Equal(t,
		"TOOL RESULT for echo:\nping\n\n"+agent.ContinuationInstruction,
		followUp)

	// The follow-up call is anchored at the first committed message, and the
	// thread pointer ends on the final one.
	require.NotNil(t, fake.parents[1])
	assert.Equal(t, int64(1), *fake.parents[1])
	require.NotNil(t, r.parentID)
	assert.Equal(t, int64(2), *r.parentID)
}

func TestProcessTurn_MultipleToolsRunInOrder(t *testing.T) {
	fake := &fakeCompleter{replies: []string{
		"TOOL: echo first\nTOOL: echo second",
		"done",
	}}
	r, _ := newTestREPL(fake, testConfig(), "")

	require.NoError(t, r.processTurn(context.Background(), "go"))

	followUp := fake.prompt(1)
	firstIdx := strings.Index(followUp, "TOOL RESULT for echo:\nfirst")
	secondIdx := strings.Index(followUp, "TOOL RESULT for echo:\nsecond")
	require.GreaterOrEqual(t, firstIdx, 0)
	require.Greater(t, secondIdx, firstIdx)
}

func TestProcessTurn_ToolFailureBecomesResultText(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"TOOL: bad now", "ok"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	require.NoError(t, r.processTurn(context.Background(), "go"))

	followUp := fake.prompt(1)
	assert.Contains(t, followUp, "TOOL bad failed:")
	assert.Contains(t, followUp, "boom")
}

func TestProcessTurn_UnknownToolReported(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"TOOL: nonexistent arg", "ok"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	require.NoError(t, r.processTurn(context.Background(), "go"))

	assert.Contains(t, fake.prompt(1), "TOOL nonexistent failed:")
	assert.Contains(t, fake.prompt(1), "unknown tool")
}

func TestProcessTurn_EmptyMessageTriggersCorrectiveReprompt(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"", "real answer"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	err := r.processTurn(context.Background(), "hello")

	require.NoError(t, err)
	require.Equal(t, 2, fake.callCount())
	assert.Equal(t, correctiveReprompt, fake.prompt(1))
	require.NotNil(t, r.parentID)
	assert.Equal(t, int64(2), *r.parentID)
}

func TestProcessTurn_IterationCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxToolIterations = 2

	fake := &fakeCompleter{replies: []string{"TOOL: echo again"}}
	r, output := newTestREPL(fake, cfg, "")

	err := r.processTurn(context.Background(), "loop forever")

	require.NoError(t, err)
	// One initial call plus one per allowed iteration.
	assert.Equal(t, 3, fake.callCount())
	assert.Contains(t, output.String(), "maximum of 2 tool iterations")
}

func TestProcessTurn_StreamFaultTerminatesTurn(t *testing.T) {
	fake := &faultingCompleter{err: errors.New("connection reset")}
	r, _ := newTestREPL(fake, testConfig(), "")

	err := r.processTurn(context.Background(), "hello")

	assert.ErrorContains(t, err, "connection reset")
	assert.Nil(t, r.parentID)
}

func TestProcessTurn_InterruptAbandonsTurn(t *testing.T) {
	fake := &hangingCompleter{started: make(chan struct{})}
	r, output := newTestREPL(fake, testConfig(), "")

	go func() {
		<-fake.started
		r.interrupts.Notify()
	}()

	err := r.processTurn(context.Background(), "hello")

	// The turn is abandoned silently and nothing is committed.
	require.NoError(t, err)
	assert.Nil(t, r.parentID)
	assert.Contains(t, output.String(), "interrupted")
}

func TestProcessTurn_InterruptDuringCorrectiveStepIsSilent(t *testing.T) {
	fake := &emptyThenHangingCompleter{started: make(chan struct{})}
	r, output := newTestREPL(fake, testConfig(), "")

	go func() {
		<-fake.started
		r.interrupts.Notify()
	}()

	err := r.processTurn(context.Background(), "hello")

	require.NoError(t, err)
	// The empty first message was committed; the cancelled corrective step
	// returns to input without the interruption notice.
	assert.Equal(t, 2, fake.callCount())
	assert.NotContains(t, output.String(), "interrupted")
}

func TestCommit_NilIDKeepsThreadPointer(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"x"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	anchor := int64(5)
	r.parentID = &anchor
	r.commit(&deepseek.Message{ID: nil, Content: "x"})

	require.NotNil(t, r.parentID)
	assert.Equal(t, int64(5), *r.parentID)
	assert.False(t, r.firstTurn)
}

func TestRun_ExitCommand(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"never sent"}}
	r, _ := newTestREPL(fake, testConfig(), "/exit\n")

	err := r.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, fake.callCount())
}

func TestRun_EndOfInput(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"never sent"}}
	r, _ := newTestREPL(fake, testConfig(), "")

	assert.NoError(t, r.Run(context.Background()))
}

func TestRun_UnknownCommand(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"never sent"}}
	r, output := newTestREPL(fake, testConfig(), "/bogus\n")

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, output.String(), "unknown command /bogus")
	assert.Equal(t, 0, fake.callCount())
}

func TestRun_ToolsCommand(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"never sent"}}
	r, output := newTestREPL(fake, testConfig(), "/tools\n")

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, output.String(), "- echo")
	assert.Contains(t, output.String(), "- bad")
}

func TestRun_SendsInputToCompleter(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"hi there"}}
	r, output := newTestREPL(fake, testConfig(), "hello\n")

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, fake.callCount())
	assert.Contains(t, output.String(), "hi there")
}

func TestRun_BlankLinesIgnored(t *testing.T) {
	fake := &fakeCompleter{replies: []string{"never sent"}}
	r, _ := newTestREPL(fake, testConfig(), "\n   \n")

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 0, fake.callCount())
}

func TestRun_LineReaderStopsWhenSessionEnds(t *testing.T) {
	baseline := runtime.NumGoroutine()

	fake := &fakeCompleter{replies: []string{"never sent"}}
	ctx, cancel := context.WithCancel(context.Background())

	// Input continues past the quit command; the reader goroutine would
	// otherwise stay blocked handing over the trailing line.
	r, _ := newTestREPL(fake, testConfig(), "/exit\ntrailing line\n")

	require.NoError(t, r.Run(ctx))
	cancel()

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 2*time.Second, 10*time.Millisecond, "line reader goroutine kept running")
}

// faultingCompleter fails every stream call.
type faultingCompleter struct {
	err error
}

func (f *faultingCompleter) CreateChat(ctx context.Context) (string, error) {
	return "chat-test", nil
}

func (f *faultingCompleter) ResumeChat(ctx context.Context, chatID string) (*int64, error) {
	return nil, nil
}

func (f *faultingCompleter) StreamCompletion(ctx context.Context, request deepseek.Request) (<-chan deepseek.StreamEvent, error) {
	return nil, f.err
}

// emptyThenHangingCompleter answers the first call with an empty committed
// message and then hangs on the corrective re-prompt until interrupted.
type emptyThenHangingCompleter struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
}

func (e *emptyThenHangingCompleter) CreateChat(ctx context.Context) (string, error) {
	return "chat-test", nil
}

func (e *emptyThenHangingCompleter) ResumeChat(ctx context.Context, chatID string) (*int64, error) {
	return nil, nil
}

func (e *emptyThenHangingCompleter) StreamCompletion(ctx context.Context, request deepseek.Request) (<-chan deepseek.StreamEvent, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.mu.Unlock()

	events := make(chan deepseek.StreamEvent, 1)
	if call == 1 {
		id := int64(1)
		events <- deepseek.StreamEvent{Chunk: deepseek.Chunk{
			Kind:    deepseek.ChunkFinal,
			Message: &deepseek.Message{ID: &id, Content: ""},
		}}
		close(events)
		return events, nil
	}

	close(e.started)
	return events, nil
}

func (e *emptyThenHangingCompleter) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// hangingCompleter yields one content chunk and then never finishes, so a
// turn stays pending until interrupted.
type hangingCompleter struct {
	started chan struct{}
}

func (h *hangingCompleter) CreateChat(ctx context.Context) (string, error) {
	return "chat-test", nil
}

func (h *hangingCompleter) ResumeChat(ctx context.Context, chatID string) (*int64, error) {
	return nil, nil
}

func (h *hangingCompleter) StreamCompletion(ctx context.Context, request deepseek.Request) (<-chan deepseek.StreamEvent, error) {
	events := make(chan deepseek.StreamEvent, 1)
	events <- deepseek.StreamEvent{Chunk: deepseek.Chunk{Kind: deepseek.ChunkContent, Text: "partial"}}
	close(h.started)
	return events, nil
}
