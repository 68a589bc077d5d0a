package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrShellSpawn reports that the command interpreter itself could not be
// started (missing binary, permission denial). This is a tool-level failure,
// distinct from a command that ran and exited non-zero.
var ErrShellSpawn = errors.New("failed to spawn shell")

// CommandResult is the captured outcome of one shell command.
type CommandResult struct {
	// ExitCode is the child's exit status, or -1 when it is unknown (for
	// example when the child was killed by a signal).
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunCommand executes the command line as one child process through the
// host's default command interpreter, capturing stdout and stderr
// independently.
func RunCommand(ctx context.Context, command string) (*CommandResult, error) {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ExitCode is -1 when the child died from a signal.
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("%w: %v", ErrShellSpawn, err)
		}
	}

	return &CommandResult{
		ExitCode: exitCode,
		Stdout:   decodePermissive(stdout.Bytes()),
		Stderr:   decodePermissive(stderr.Bytes()),
	}, nil
}

// Envelope renders the command result in the fixed format fed back to the
// model.
func (r *CommandResult) Envelope() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "EXIT_CODE:%d", r.ExitCode)

	if r.Stdout != "" {
		sb.WriteString("\nstdout:\n")
		sb.WriteString(r.Stdout)
	}
	if r.Stderr != "" {
		sb.WriteString("\n\nstderr:\n")
		sb.WriteString(r.Stderr)
	}
	if r.Stdout == "" && r.Stderr == "" {
		sb.WriteString("\nCommand executed successfully (no output)")
	}

	return sb.String()
}

// decodePermissive converts captured bytes to text, replacing invalid UTF-8
// sequences instead of failing.
func decodePermissive(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
