// Package export writes session artifacts to disk for user-initiated
// downloads.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"clinweaver/internal/types"
)

// Exporter accepts produced artifacts. The session depends on this
// interface; FileExporter is the default implementation.
type Exporter interface {
	Export(ctx context.Context, artifact types.Artifact) error
}

// FileExporter writes artifacts into a directory.
type FileExporter struct {
	Dir string
}

// NewFileExporter creates an exporter rooted at dir.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{Dir: dir}
}

// Export writes one artifact. Unavailable artifacts are rejected rather than
// written empty.
func (e *FileExporter) Export(_ context.Context, artifact types.Artifact) error {
	if !artifact.Available {
		return fmt.Errorf("artifact %q is not available yet", artifact.Filename)
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(e.Dir, artifact.Filename)
	if err := os.WriteFile(path, []byte(artifact.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", artifact.Filename, err)
	}
	return nil
}

// All exports every available artifact concurrently; the artifacts touch
// disjoint files so the writes are independent. Unavailable artifacts are
// skipped, and the count of exported files is returned.
func All(ctx context.Context, exporter Exporter, artifacts []types.Artifact) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	exported := 0
	for _, artifact := range artifacts {
		if !artifact.Available {
			continue
		}
		exported++
		g.Go(func() error {
			return exporter.Export(ctx, artifact)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return exported, nil
}
