package session

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"clinweaver/internal/types"
)

// Files lists the exportable artifacts of the current session state. Every
// artifact carries an availability flag; unavailable ones are placeholders
// so callers can render a stable file listing.
func (s *Session) Files() []types.Artifact {
	s.mu.Lock()
	tasks := make([]types.DerivationTask, len(s.tasks))
	copy(tasks, s.tasks)
	combined := s.combinedPrompt
	code := s.generatedCode
	driver := s.driver
	lastRun := s.lastRun
	converted := make([]types.ConvertedArtifact, 0, len(s.converted))
	for _, c := range s.converted {
		converted = append(converted, c)
	}
	s.mu.Unlock()

	sort.Slice(converted, func(i, j int) bool { return converted[i].Language < converted[j].Language })

	files := []types.Artifact{
		{
			Filename:  "spec_tasks.md",
			Content:   taskListing(tasks),
			MimeType:  "text/markdown",
			Available: len(tasks) > 0,
		},
		{
			Filename:  "final_prompt.txt",
			Content:   combined,
			MimeType:  "text/plain",
			Available: combined != "",
		},
		{
			Filename:  "create_adae.R",
			Content:   code,
			MimeType:  "text/plain",
			Available: code != "",
		},
		{
			Filename:  "driver.R",
			Content:   driver,
			MimeType:  "text/plain",
			Available: driver != "",
		},
	}

	for _, c := range converted {
		files = append(files, types.Artifact{
			Filename:  "create_adae" + c.Language.FileExtension(),
			Content:   c.Code,
			MimeType:  "text/plain",
			Available: true,
		})
	}

	preview := ""
	if lastRun != nil {
		preview = rowsToCSV(lastRun.Rows)
	}
	files = append(files, types.Artifact{
		Filename:  "output_preview.csv",
		Content:   preview,
		MimeType:  "text/csv",
		Available: preview != "",
	})
	return files
}

func taskListing(tasks []types.DerivationTask) string {
	if len(tasks) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# Derivation Tasks\n\n")
	for _, t := range tasks {
		status := " "
		if t.IsApproved {
			status = "x"
		}
		fmt.Fprintf(&sb, "- [%s] **%s** (%s): %s\n", status, t.Variable, t.Label, t.Derivation)
	}
	return sb.String()
}

// rowsToCSV renders the simulated output rows with a header of the sorted
// union of keys. Row records are free-form, so missing keys become empty
// cells.
func rowsToCSV(rows []types.Row) string {
	if len(rows) == 0 {
		return ""
	}

	keySet := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(keys)
	for _, row := range rows {
		record := make([]string, len(keys))
		for i, k := range keys {
			if v, ok := row[k]; ok && v != nil {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		_ = w.Write(record)
	}
	w.Flush()
	return sb.String()
}
