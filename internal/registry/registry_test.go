package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinweaver/internal/types"
)

func sampleRows() []types.SpecRow {
	return []types.SpecRow{
		{Variable: "AESER", Label: "Serious Event", Derivation: "If AESEV is 'SEVERE' then 'Y' else 'N'"},
		{Variable: "ADURN", Label: "Analysis Duration (days)", Derivation: "Calculate as (AEENDTC - AESTDTC) + 1"},
		{Variable: "AGEGR1", Label: "Age Group 1", Derivation: "Categorize AGE into groups: '<18', '18-64', '>=65'"},
	}
}

func TestLoad_AssignsSequentialIDsAndSeedsPrompts(t *testing.T) {
	tasks := Load(sampleRows())
	require.Len(t, tasks, 3)

	for i, task := range tasks {
		assert.Equal(t, i+1, task.ID)
		assert.False(t, task.IsApproved)
		assert.Contains(t, task.Prompt, task.Variable)
		assert.Contains(t, task.Prompt, task.Derivation)
		assert.Contains(t, task.Prompt, "The new column should be added to the data frame.")
	}
}

func TestLoad_DropsRowsMissingVariableOrDerivation(t *testing.T) {
	rows := []types.SpecRow{
		{Variable: "AESER", Label: "ok", Derivation: "logic"},
		{Variable: "", Label: "no variable", Derivation: "logic"},
		{Variable: "ADURN", Label: "no derivation", Derivation: "   "},
	}
	tasks := Load(rows)
	require.Len(t, tasks, 1)
	assert.Equal(t, "AESER", tasks[0].Variable)
	// Surviving tasks are renumbered from 1, with no gaps.
	assert.Equal(t, 1, tasks[0].ID)
}

func TestEditPrompt_ReplacesOnlyMatchingTask(t *testing.T) {
	tasks := Load(sampleRows())
	edited := EditPrompt(tasks, 2, "custom instruction")

	assert.Equal(t, "custom instruction", edited[1].Prompt)
	assert.Equal(t, tasks[0].Prompt, edited[0].Prompt)
	assert.Equal(t, tasks[2].Prompt, edited[2].Prompt)
	// The input slice is never mutated.
	assert.NotEqual(t, "custom instruction", tasks[1].Prompt)
}

func TestEditPrompt_UnknownIDIsNoOp(t *testing.T) {
	tasks := Load(sampleRows())
	edited := EditPrompt(tasks, 99, "custom instruction")
	if diff := cmp.Diff(tasks, edited); diff != "" {
		t.Errorf("registry changed on unknown id (-want +got):\n%s", diff)
	}
}

func TestToggleApproval_Involution(t *testing.T) {
	tasks := Load(sampleRows())

	once, changed := ToggleApproval(tasks, 2)
	require.NotNil(t, changed)
	assert.True(t, changed.IsApproved)
	assert.True(t, once[1].IsApproved)

	twice, changed := ToggleApproval(once, 2)
	require.NotNil(t, changed)
	assert.False(t, changed.IsApproved)
	if diff := cmp.Diff(tasks, twice); diff != "" {
		t.Errorf("double toggle did not restore original state (-want +got):\n%s", diff)
	}
}

func TestToggleApproval_UnknownID(t *testing.T) {
	tasks := Load(sampleRows())
	out, changed := ToggleApproval(tasks, 42)
	assert.Nil(t, changed)
	if diff := cmp.Diff(tasks, out); diff != "" {
		t.Errorf("registry changed on unknown id (-want +got):\n%s", diff)
	}
}

func TestApproved_PreservesRelativeOrder(t *testing.T) {
	tasks := Load(sampleRows())
	tasks, _ = ToggleApproval(tasks, 3)
	tasks, _ = ToggleApproval(tasks, 1)

	approved := Approved(tasks)
	require.Len(t, approved, 2)
	assert.Equal(t, 1, approved[0].ID)
	assert.Equal(t, 3, approved[1].ID)
}

func TestFind(t *testing.T) {
	tasks := Load(sampleRows())
	assert.Nil(t, Find(tasks, 0))
	got := Find(tasks, 2)
	require.NotNil(t, got)
	assert.Equal(t, "ADURN", got.Variable)
}
