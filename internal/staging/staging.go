// Package staging writes regenerated metadata records into an isolated
// output tree that mirrors the database's relative layout. The live database
// is never touched.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBlankContent marks an attempt to write an empty record. Callers decide
// whether that is harmless (executable-only packages) or a bug.
var ErrBlankContent = errors.New("refusing to write blank record")

// Writer mirrors database paths under a staging root.
type Writer struct {
	Root string
}

// NewWriter returns a Writer over root, creating a fresh temporary directory
// when root is empty.
func NewWriter(root string) (*Writer, error) {
	if root == "" {
		tmp, err := os.MkdirTemp("", "vdbmend-")
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		return &Writer{Root: tmp}, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root %q: %w", abs, err)
	}
	return &Writer{Root: abs}, nil
}

// Write rewrites path, which must live under the strip prefix, into the
// staging tree and writes contents there, creating parents as needed.
//
// Two refusals guard the contract: a rewritten path that escapes the staging
// root (a path-rewrite bug) is an error, and blank contents yield
// ErrBlankContent.
func (w *Writer) Write(path, contents, strip string) error {
	if contents == "" {
		return fmt.Errorf("%w: %s", ErrBlankContent, path)
	}

	rewritten := strings.Replace(path, strings.TrimRight(strip, "/"), w.Root, 1)
	rewritten = filepath.Clean(rewritten)
	if rewritten == path || !strings.HasPrefix(rewritten, w.Root+string(filepath.Separator)) {
		return fmt.Errorf("refusing to write outside staging root: %s", rewritten)
	}

	if err := os.MkdirAll(filepath.Dir(rewritten), 0o755); err != nil {
		return fmt.Errorf("failed to create staging directories for %s: %w", rewritten, err)
	}
	if err := os.WriteFile(rewritten, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("failed to write staged record %s: %w", rewritten, err)
	}
	return nil
}
