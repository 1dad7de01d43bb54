package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const updatedPrefix = "# UPDATED: "

// Writer stores rendered documents, touching disk only when content changed
type Writer struct {
	dir    string
	ext    string
	dryRun bool
}

// NewWriter creates a writer for dir; ext includes the leading dot
func NewWriter(dir, ext string, dryRun bool) *Writer {
	return &Writer{dir: dir, ext: ext, dryRun: dryRun}
}

// Path returns the output file for a category
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name+w.ext)
}

// Write stores content for category name unless the existing file already
// holds the same rules. It reports whether the file was (or, in dry-run
// mode, would be) written.
func (w *Writer) Write(name, content string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}

	path := w.Path(name)

	existing, err := os.ReadFile(path)
	if err == nil && sameRules(string(existing), content) {
		return false, nil
	}
	// A missing or unreadable file is treated as different

	if w.dryRun {
		return true, nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	return true, nil
}

// sameRules compares two documents ignoring the UPDATED timestamp line,
// which changes on every run even when no rule did.
func sameRules(a, b string) bool {
	if a == b {
		return true
	}
	return stripUpdated(a) == stripUpdated(b)
}

func stripUpdated(doc string) string {
	lines := strings.Split(doc, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, updatedPrefix) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid category name %q", name)
	}
	return nil
}

// WriteFlag records whether any output changed as a single "1" or "0"
func WriteFlag(path string, changed bool) error {
	value := "0"
	if changed {
		value = "1"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create flag dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write flag file: %w", err)
	}
	return nil
}
