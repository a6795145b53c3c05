// Package fs provides the file capabilities: reading a file and appending a
// line to a log. Access can be limited to paths matching doublestar
// patterns.
package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// ErrNotFound is returned by ReadFile when the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrDenied is returned for paths outside the allow list.
	ErrDenied = errors.New("path not allowed")
)

// Guard limits file access to paths matching any of its patterns. A Guard
// with no patterns allows everything.
type Guard struct {
	patterns []string
}

// NewGuard validates patterns and returns a Guard. Patterns are matched
// against absolute, slash-separated paths, so "/var/log/**" allows every file
// below /var/log.
func NewGuard(patterns ...string) (*Guard, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid path pattern: %s", p)
		}
	}
	return &Guard{patterns: patterns}, nil
}

// Check returns nil when path may be accessed.
func (g *Guard) Check(path string) error {
	if g == nil || len(g.patterns) == 0 {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	target := filepath.ToSlash(abs)
	for _, p := range g.patterns {
		if ok, _ := doublestar.Match(p, target); ok {
			return nil
		}
	}
	return fmt.Errorf("%s: %w", path, ErrDenied)
}

// FS performs guarded file operations.
type FS struct {
	guard *Guard
}

// New returns an FS restricted by guard. A nil guard allows everything.
func New(guard *Guard) *FS {
	return &FS{guard: guard}
}

// ReadFile returns the contents of a UTF-8 text file.
func (f *FS) ReadFile(path string) (string, error) {
	if err := f.guard.Check(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: file is not valid UTF-8 text", path)
	}
	return string(data), nil
}

// AppendLog appends text and a newline to path, creating the file if
// needed.
func (f *FS) AppendLog(path, text string) error {
	if err := f.guard.Check(path); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(text + "\n"); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
