// Package agent implements the tool-invocation protocol: parsing tool
// directives out of assistant text, dispatching them through an immutable
// registry, and the individual tool handlers (files, patch, shell, web).
package agent

import "strings"

// Marker is the line prefix that opens a tool invocation in assistant text.
const Marker = "TOOL:"

// Invocation is one parsed tool request. Invocations are ordered by their
// textual position in the source message and executed in that order.
type Invocation struct {
	Name string
	Arg  string
}

// Parse extracts the ordered list of tool invocations from one assistant
// message. A line whose trimmed form starts with the marker opens an
// invocation: the remainder of the line splits on the first whitespace into
// the tool name and an optional first argument fragment. All following lines
// up to the next marker line (or end of text) are captured verbatim as the
// body. Lines outside any invocation are ignored. Parsing is pure: the same
// text always yields the same result, and text without marker lines yields
// nil, meaning a final answer.
func Parse(text string) []Invocation {
	lines := strings.Split(text, "\n")

	var invocations []Invocation
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, Marker) {
			i++
			continue
		}

		name, fragment := splitDirective(strings.TrimPrefix(trimmed, Marker))

		var bodyLines []string
		i++
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), Marker) {
			bodyLines = append(bodyLines, lines[i])
			i++
		}

		body := strings.Join(bodyLines, "\n")
		invocations = append(invocations, Invocation{
			Name: name,
			Arg:  joinArg(fragment, body),
		})
	}

	return invocations
}

// splitDirective splits the text after the marker into the tool name and the
// first argument fragment.
func splitDirective(directive string) (name, fragment string) {
	directive = strings.TrimSpace(directive)
	parts := strings.SplitN(directive, " ", 2)
	name = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return name, fragment
}

// joinArg combines the first-line fragment with the captured body. An empty
// fragment must not introduce a spurious leading blank line.
func joinArg(fragment, body string) string {
	switch {
	case body == "":
		return fragment
	case fragment == "":
		return body
	default:
		return fragment + "\n" + body
	}
}
