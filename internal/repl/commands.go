package repl

import (
	"fmt"
	"strings"
)

// handleBuiltinCommand processes slash commands. It returns quit=true when
// the session should end. Unknown commands print a notice instead of going
// to the model.
func (r *REPL) handleBuiltinCommand(input string) (quit bool, err error) {
	command, _, _ := strings.Cut(input, " ")

	switch command {
	case "/exit", "/quit":
		return true, nil

	case "/help":
		r.renderer.RenderBanner("Commands: /exit, /quit, /help, /tools")
		r.renderer.RenderBanner("Anything else is sent to the assistant.")
		return false, nil

	case "/tools":
		r.renderer.RenderBanner("Available tools:")
		for _, line := range strings.Split(strings.TrimRight(r.registry.Catalog(), "\n"), "\n") {
			r.renderer.RenderNotice(line)
		}
		return false, nil

	default:
		r.renderer.RenderNotice(fmt.Sprintf("unknown command %s (try /help)", command))
		return false, nil
	}
}
