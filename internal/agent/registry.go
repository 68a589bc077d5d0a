package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrUnknownTool is returned when an invocation names a tool that is not in
// the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ToolError wraps a failure from a tool handler so callers can distinguish
// it from dispatch failures.
type ToolError struct {
	Name string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Name, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Tool is one entry in the registry: a name, a one-line usage description
// for the model-facing catalog, and the handler.
type Tool struct {
	Name  string
	Usage string
	Run   func(ctx context.Context, arg string) (string, error)
}

// Registry is an immutable name-to-tool mapping. It is built once at startup
// and is safe for unsynchronized concurrent reads afterwards.
type Registry struct {
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry builds a registry from the given tools. Later entries with a
// duplicate name override earlier ones.
func NewRegistry(logger *zap.Logger, tools ...Tool) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	return &Registry{
		tools:  byName,
		logger: logger,
	}
}

// Execute looks up and runs the named tool. Absent names fail with
// ErrUnknownTool; handler failures are wrapped in a ToolError. Invocations
// from one message must be executed strictly sequentially because later
// calls may depend on earlier calls' filesystem effects.
func (r *Registry) Execute(ctx context.Context, name, arg string) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	output, err := tool.Run(ctx, arg)
	if err != nil {
		r.logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.Error(err),
		)
		return "", &ToolError{Name: name, Err: err}
	}

	return output, nil
}

// Names returns all registered tool names sorted alphabetically.
func (r *Registry) Names() []string {
	names := lo.Keys(r.tools)
	sort.Strings(names)
	return names
}

// Catalog renders the model-facing tool list, one "- name usage" line per
// tool, sorted by name for determinism.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	for _, name := range r.Names() {
		tool := r.tools[name]
		sb.WriteString(fmt.Sprintf("- %s %s\n", tool.Name, tool.Usage))
	}
	return sb.String()
}

// Preamble renders the fixed instruction text sent with the first turn,
// embedding the tool catalog.
func (r *Registry) Preamble() string {
	return fmt.Sprintf(`You are an assistant that can use the following tools to interact with the local machine.
To use a tool, output a line starting with "TOOL:" followed by the tool name and its argument.
Arguments may span multiple lines: every line up to the next "TOOL:" line belongs to the current tool call.
Available tools:
%s
After using a tool, you will receive the result in the next user message, prefixed with "TOOL RESULT".
You can then continue the conversation or use another tool.
When you have the final answer, just output it normally without any "TOOL:" line.`, r.Catalog())
}

// ContinuationInstruction is appended to the synthetic follow-up message
// carrying tool results back to the model.
const ContinuationInstruction = "Continue with the next step or provide the final answer."
