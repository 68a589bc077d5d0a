package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultRegistry builds the registry with the full default tool set. The
// registry is read-only for the process lifetime once returned.
func DefaultRegistry(logger *zap.Logger) *Registry {
	return NewRegistry(logger,
		Tool{
			Name:  "list_files",
			Usage: "<directory>   : lists all files and directories in the given directory (non-recursive)",
			Run: func(ctx context.Context, arg string) (string, error) {
				return ListFiles(arg)
			},
		},
		Tool{
			Name:  "read_file",
			Usage: "<file_path>    : outputs the text contents of a file",
			Run: func(ctx context.Context, arg string) (string, error) {
				return ReadFile(arg)
			},
		},
		Tool{
			Name:  "write_file",
			Usage: "<file_path> then content on following lines : creates or overwrites a file",
			Run: func(ctx context.Context, arg string) (string, error) {
				return WriteFile(arg)
			},
		},
		Tool{
			Name:  "create_directory",
			Usage: "<dir>   : creates a directory (and any missing parents)",
			Run: func(ctx context.Context, arg string) (string, error) {
				return CreateDirectory(arg)
			},
		},
		Tool{
			Name:  "patch_file",
			Usage: "<file_path> then one or more <<<<<<< SEARCH / ======= / >>>>>>> REPLACE blocks : applies search/replace edits",
			Run: func(ctx context.Context, arg string) (string, error) {
				path, blocks, err := ParsePatchArg(arg)
				if err != nil {
					return "", err
				}
				count, err := ApplyPatch(path, blocks)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Applied %d edit block(s) to %s", count, path), nil
			},
		},
		Tool{
			Name:  "run_command",
			Usage: "<command line> : runs a shell command and returns exit code, stdout and stderr",
			Run: func(ctx context.Context, arg string) (string, error) {
				result, err := RunCommand(ctx, arg)
				if err != nil {
					return "", err
				}
				return result.Envelope(), nil
			},
		},
		Tool{
			Name:  "fetch_url",
			Usage: "<url>          : fetches a URL and returns the raw body text",
			Run: func(ctx context.Context, arg string) (string, error) {
				return Fetch(ctx, arg)
			},
		},
		Tool{
			Name:  "web_search",
			Usage: "<query>        : searches the web and returns titles, URLs and snippets",
			Run: func(ctx context.Context, arg string) (string, error) {
				return Search(ctx, arg)
			},
		},
	)
}
