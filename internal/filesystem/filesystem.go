// Package filesystem provides a small file system abstraction so that
// components touching the data directory can be tested with mocks.
package filesystem

import "os"

// FileSystem abstracts the handful of file operations used outside the
// tool handlers themselves.
type FileSystem interface {
	ReadFile(name string) (string, error)
	WriteFile(name, content string) error
}

// DefaultFileSystem implements FileSystem against the real OS.
type DefaultFileSystem struct{}

func (DefaultFileSystem) ReadFile(name string) (string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (DefaultFileSystem) WriteFile(name, content string) error {
	return os.WriteFile(name, []byte(content), 0644)
}
