package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/cicrender/internal/cohort"
	"github.com/specialistvlad/cicrender/internal/ctxlog"
	"github.com/specialistvlad/cicrender/internal/fsutil"
)

// ErrNoFiles is returned when none of the configured paths contain a .hcl file.
var ErrNoFiles = errors.New("no .hcl snapshot files found")

// Loader is the HCL implementation of cohort.Source.
type Loader struct {
	paths []string
}

var _ cohort.Source = (*Loader)(nil)

// NewLoader creates a loader over the given files and directories.
func NewLoader(paths ...string) *Loader {
	return &Loader{paths: paths}
}

// Configurations parses every snapshot file and returns the configurations in
// file order, then in the order they are declared.
func (l *Loader) Configurations(ctx context.Context) ([]*cohort.Configuration, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL snapshot loader started.", "path_count", len(l.paths))

	files, err := fsutil.CollectFiles(l.paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, l.paths)
	}
	logger.Debug("Discovered snapshot files.", "count", len(files))

	parser := hclparse.NewParser()
	var configs []*cohort.Configuration
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		parsed, diags := decodeFile(hclFile.Body)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		logger.Debug("Snapshot file decoded.", "file", file, "configurations", len(parsed))
		configs = append(configs, parsed...)
	}

	logger.Debug("HCL snapshot loading complete.", "configurations", len(configs))
	return configs, nil
}
