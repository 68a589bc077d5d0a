package render

import (
	"context"
	"fmt"
	"io"
	"time"
)

// SpinnerFrames contains the braille spinner animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerInterval is the animation frame duration.
const spinnerInterval = 80 * time.Millisecond

// StartSpinner renders an animated spinner with a message until the
// returned stop function is called or the context is cancelled. The stop
// function blocks until the spinner line has been erased, so callers can
// safely print immediately after.
func StartSpinner(ctx context.Context, w io.Writer, message string) func() {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-done:
				eraseLine(w)
				return
			case <-ctx.Done():
				eraseLine(w)
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", DimStyle.Render(SpinnerFrames[frame]), DimStyle.Render(message))
				frame = (frame + 1) % len(SpinnerFrames)
			}
		}
	}()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		<-finished
	}
}

// eraseLine clears the current terminal line.
func eraseLine(w io.Writer) {
	fmt.Fprint(w, "\r\x1b[2K")
}
