package repl

import (
	"context"
	"errors"

	"github.com/atinylittleshell/seek/internal/deepseek"
)

// Completer is the completion-service surface the turn controller depends
// on. The deepseek client satisfies it; tests substitute fakes.
type Completer interface {
	CreateChat(ctx context.Context) (string, error)
	ResumeChat(ctx context.Context, chatID string) (*int64, error)
	StreamCompletion(ctx context.Context, request deepseek.Request) (<-chan deepseek.StreamEvent, error)
}

// ErrInterrupted reports that the user cancelled the active stream. The
// current turn is abandoned; the thread pointer stays unchanged and no
// partial message is committed.
var ErrInterrupted = errors.New("stream interrupted")

// collectStream issues one streaming completion call and consumes it to the
// final message, racing every chunk wait against the interrupt subscription.
// On interrupt, the stream is abandoned mid-flight and ErrInterrupted is
// returned; whether to announce the interruption is the caller's call. On
// success, the committed message is returned; the caller is responsible for
// advancing the thread pointer.
func (r *REPL) collectStream(ctx context.Context, prompt string) (*deepseek.Message, error) {
	interrupts, unsubscribe := r.interrupts.Subscribe()
	defer unsubscribe()

	// The derived context tears down the underlying request when the user
	// interrupts.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := r.client.StreamCompletion(streamCtx, deepseek.Request{
		ChatID:   r.chatID,
		Prompt:   prompt,
		ParentID: r.parentID,
		Search:   r.cfg.SearchEnabled,
		Thinking: r.cfg.ThinkingEnabled,
	})
	if err != nil {
		return nil, err
	}

	r.renderer.BeginMessage()

	stopSpinner := r.renderer.StartWaitSpinner(streamCtx)
	firstChunk := true
	stopWaiting := func() {
		if firstChunk {
			stopSpinner()
			firstChunk = false
		}
	}
	defer stopWaiting()

	for {
		select {
		case <-interrupts:
			stopWaiting()
			cancel()
			return nil, ErrInterrupted

		case event, ok := <-events:
			if !ok {
				return nil, errors.New("completion stream closed without a final message")
			}
			if event.Err != nil {
				stopWaiting()
				return nil, event.Err
			}

			stopWaiting()
			switch event.Chunk.Kind {
			case deepseek.ChunkThinking:
				r.renderer.RenderThinkingFragment(event.Chunk.Text)
			case deepseek.ChunkContent:
				r.renderer.RenderContentFragment(event.Chunk.Text)
			case deepseek.ChunkFinal:
				r.renderer.EndMessage()
				return event.Chunk.Message, nil
			}
		}
	}
}
