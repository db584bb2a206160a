package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SourceExtension is appended to import names that lack it.
const SourceExtension = ".ecl"

// Source is one unit of ECL text with the path used in diagnostics.
type Source struct {
	Path  string
	Text  string
	Lines []string
}

// NewSource splits text into lines for diagnostic rendering.
func NewSource(path, text string) *Source {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Source{
		Path:  path,
		Text:  text,
		Lines: strings.Split(text, "\n"),
	}
}

// Line returns the 1-based source line n, or "" when out of range.
func (s *Source) Line(n int) string {
	if s == nil || n < 1 || n > len(s.Lines) {
		return ""
	}
	return s.Lines[n-1]
}

// Dir is the directory imports in this source are resolved against.
func (s *Source) Dir() string {
	if s == nil || s.Path == "" || strings.HasPrefix(s.Path, "<") {
		return "."
	}
	return filepath.Dir(s.Path)
}

// ReadSource loads path as a Source.
func ReadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSource(path, string(data)), nil
}

// WithExtension adds the ECL extension when name has none.
func WithExtension(name string) string {
	if strings.HasSuffix(name, SourceExtension) {
		return name
	}
	return name + SourceExtension
}

// ResolveSourcePath finds name, or name with the ECL extension, in the
// given directories in order. Absolute names are checked as is.
func ResolveSourcePath(name string, dirs []string) (string, error) {
	candidates := []string{name}
	if ext := WithExtension(name); ext != name {
		candidates = append(candidates, ext)
	}
	if filepath.IsAbs(name) {
		dirs = []string{""}
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	for _, dir := range dirs {
		for _, candidate := range candidates {
			path := candidate
			if dir != "" {
				path = filepath.Join(dir, candidate)
			}
			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return filepath.Clean(path), nil
			}
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("stat %s: %w", path, err)
			}
		}
	}
	return "", fmt.Errorf("cannot find %q: %w", WithExtension(name), fs.ErrNotExist)
}
