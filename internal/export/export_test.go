package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinweaver/internal/types"
)

func TestFileExporter_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(dir)

	err := exporter.Export(context.Background(), types.Artifact{
		Filename:  "create_adae.R",
		Content:   "create_adae <- function(adsl, ae) ae",
		MimeType:  "text/plain",
		Available: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "create_adae.R"))
	require.NoError(t, err)
	assert.Equal(t, "create_adae <- function(adsl, ae) ae", string(data))
}

func TestFileExporter_RejectsUnavailable(t *testing.T) {
	exporter := NewFileExporter(t.TempDir())
	err := exporter.Export(context.Background(), types.Artifact{Filename: "x.R"})
	assert.Error(t, err)
}

func TestAll_SkipsUnavailable(t *testing.T) {
	dir := t.TempDir()
	artifacts := []types.Artifact{
		{Filename: "a.txt", Content: "a", Available: true},
		{Filename: "b.txt", Content: "b", Available: false},
		{Filename: "c.txt", Content: "c", Available: true},
	}

	n, err := All(context.Background(), NewFileExporter(dir), artifacts)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
