package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(zap.NewNop(),
		Tool{
			Name:  "echo",
			Usage: "<text> : echoes its argument",
			Run: func(ctx context.Context, arg string) (string, error) {
				return arg, nil
			},
		},
		Tool{
			Name:  "always_fails",
			Usage: ": fails",
			Run: func(ctx context.Context, arg string) (string, error) {
				return "", errors.New("broken")
			},
		},
	)
}

func TestRegistry_Execute(t *testing.T) {
	registry := newTestRegistry()

	output, err := registry.Execute(context.Background(), "echo", "hi there")

	require.NoError(t, err)
	assert.Equal(t, "hi there", output)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Execute(context.Background(), "no_such_tool", "")

	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Contains(t, err.Error(), "no_such_tool")
}

func TestRegistry_ExecuteWrapsHandlerFailure(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Execute(context.Background(), "always_fails", "")

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "always_fails", toolErr.Name)
	assert.EqualError(t, toolErr.Err, "broken")
}

func TestRegistry_NamesSorted(t *testing.T) {
	registry := newTestRegistry()

	assert.Equal(t, []string{"always_fails", "echo"}, registry.Names())
}

func TestRegistry_Catalog(t *testing.T) {
	registry := newTestRegistry()

	catalog := registry.Catalog()

	lines := strings.Split(strings.TrimRight(catalog, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "- always_fails : fails", lines[0])
	assert.Equal(t, "- echo <text> : echoes its argument", lines[1])
}

func TestRegistry_PreambleEmbedsCatalog(t *testing.T) {
	registry := newTestRegistry()

	preamble := registry.Preamble()

	assert.Contains(t, preamble, `"TOOL:"`)
	assert.Contains(t, preamble, registry.Catalog())
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry(zap.NewNop())

	assert.Equal(t, []string{
		"create_directory",
		"fetch_url",
		"list_files",
		"patch_file",
		"read_file",
		"run_command",
		"web_search",
		"write_file",
	}, registry.Names())
}
