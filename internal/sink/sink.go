// Package sink writes rendered reports to disk, one text file per
// configuration.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/specialistvlad/cicrender/internal/ctxlog"
	"github.com/specialistvlad/cicrender/internal/render"
)

// Extension is appended to every report file name.
const Extension = ".txt"

// Writer writes reports into a single output directory. It is safe for
// concurrent use.
type Writer struct {
	dir string

	mu      sync.Mutex
	written map[string]string // file path -> configuration name
}

// New returns a Writer for dir. The directory is not touched until Prepare.
func New(dir string) *Writer {
	return &Writer{
		dir:     dir,
		written: make(map[string]string),
	}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Prepare creates the output directory and any missing parents.
func (w *Writer) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}
	ctxlog.FromContext(ctx).Debug("Output directory ready.", "dir", w.dir)
	return nil
}

// Write stores lines for the configuration called name and returns the path
// written. An existing file is truncated. When two configurations map to the
// same file the later one wins and a warning is logged.
func (w *Writer) Write(ctx context.Context, name string, lines []string) (string, error) {
	path := filepath.Join(w.dir, FileName(name))

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Writing report.", "path", path)

	w.mu.Lock()
	if prev, ok := w.written[path]; ok {
		logger.Warn("Report file name collision, overwriting.", "path", path, "previous", prev)
	}
	w.written[path] = name
	w.mu.Unlock()

	if err := os.WriteFile(path, []byte(render.Join(lines)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report for %q: %w", name, err)
	}
	return path, nil
}

// FileName maps a configuration name to its report file name by removing
// characters that are not allowed in file names and appending Extension.
func FileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return -1
		}
		return r
	}, name)
	return cleaned + Extension
}
