// Package registry holds the session's derivation tasks and their
// approval/edit state. All mutations are functional: they return a new task
// slice and never modify the input, so state transitions stay easy to reason
// about and test.
package registry

import (
	"strings"

	"clinweaver/internal/prompt"
	"clinweaver/internal/types"
)

// Load replaces the full task set from ingested specification rows.
// IDs are assigned sequentially starting at 1 and each task's initial prompt
// is synthesized from its variable and derivation. Rows lacking either a
// variable or a derivation are discarded, not defaulted; callers can detect
// the discrepancy by comparing len(rows) with len(result).
func Load(rows []types.SpecRow) []types.DerivationTask {
	tasks := make([]types.DerivationTask, 0, len(rows))
	for _, row := range rows {
		variable := strings.TrimSpace(row.Variable)
		derivation := strings.TrimSpace(row.Derivation)
		if variable == "" || derivation == "" {
			continue
		}
		task := types.DerivationTask{
			ID:         len(tasks) + 1,
			Variable:   variable,
			Label:      strings.TrimSpace(row.Label),
			Derivation: derivation,
		}
		task.Prompt = prompt.CompileSingle(task)
		tasks = append(tasks, task)
	}
	return tasks
}

// EditPrompt replaces the prompt of the task with the given id. Unknown ids
// are a no-op; the returned slice is always a fresh copy.
func EditPrompt(tasks []types.DerivationTask, id int, text string) []types.DerivationTask {
	out := make([]types.DerivationTask, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == id {
			out[i].Prompt = text
			break
		}
	}
	return out
}

// ToggleApproval flips the approval state of the task with the given id and
// returns the new slice together with the task as it stands after the flip.
// The second return is nil when the id is unknown, in which case the task set
// is unchanged.
func ToggleApproval(tasks []types.DerivationTask, id int) ([]types.DerivationTask, *types.DerivationTask) {
	out := make([]types.DerivationTask, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == id {
			out[i].IsApproved = !out[i].IsApproved
			changed := out[i]
			return out, &changed
		}
	}
	return out, nil
}

// Approved returns the approved subset in original relative order.
func Approved(tasks []types.DerivationTask) []types.DerivationTask {
	var approved []types.DerivationTask
	for _, t := range tasks {
		if t.IsApproved {
			approved = append(approved, t)
		}
	}
	return approved
}

// Find returns the task with the given id, or nil.
func Find(tasks []types.DerivationTask, id int) *types.DerivationTask {
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i]
			return &t
		}
	}
	return nil
}
