// Package specload turns an uploaded tabular specification into ordered
// derivation records. The pipeline core never parses files itself; it
// consumes the Loader interface. The CSV implementation here is the
// plain-text stand-in for the original spreadsheet upload.
package specload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"clinweaver/internal/types"
)

// Loader yields an ordered sequence of specification rows.
type Loader interface {
	Load() ([]types.SpecRow, error)
}

// CSVLoader reads rows from a CSV file with a header line. Column names are
// matched case-insensitively; "variable" and "derivation" are required
// headers, "label" is optional.
type CSVLoader struct {
	Path string
}

// NewCSVLoader creates a loader for the given file.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path}
}

// Load reads and orders the specification rows. Rows shorter than the header
// are skipped; content validation (missing variable/derivation) is the
// registry's concern, not the loader's.
func (l *CSVLoader) Load() ([]types.SpecRow, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open specification: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads specification rows from CSV content.
func Parse(r io.Reader) ([]types.SpecRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("specification is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read specification header: %w", err)
	}

	varIdx, labelIdx, derivIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "variable":
			varIdx = i
		case "label":
			labelIdx = i
		case "derivation":
			derivIdx = i
		}
	}
	if varIdx < 0 || derivIdx < 0 {
		return nil, fmt.Errorf(`specification header must contain "variable" and "derivation" columns`)
	}

	var rows []types.SpecRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read specification row: %w", err)
		}

		row := types.SpecRow{}
		if varIdx < len(record) {
			row.Variable = record[varIdx]
		}
		if labelIdx >= 0 && labelIdx < len(record) {
			row.Label = record[labelIdx]
		}
		if derivIdx < len(record) {
			row.Derivation = record[derivIdx]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
