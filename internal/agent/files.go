package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListFiles returns the sorted names of the entries in a directory,
// non-recursively, one per line.
func ListFiles(dir string) (string, error) {
	path, err := resolvePath(dir)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to list directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return strings.Join(names, "\n"), nil
}

// ReadFile returns the text contents of a file.
func ReadFile(file string) (string, error) {
	path, err := resolvePath(file)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return decodePermissive(data), nil
}

// WriteFile creates or overwrites a file. The argument's first line is the
// path, the remainder is the content.
func WriteFile(arg string) (string, error) {
	target, content, _ := strings.Cut(arg, "\n")
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("write_file requires a file path on the first line")
	}

	path, err := resolvePath(target)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), target), nil
}

// CreateDirectory creates a directory together with any missing parents.
func CreateDirectory(dir string) (string, error) {
	path, err := resolvePath(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return "Directory created: " + dir, nil
}

// resolvePath resolves a potentially relative path against the working
// directory.
func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Clean(filepath.Join(cwd, path)), nil
}
