package specload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HeaderMapping(t *testing.T) {
	content := `Variable,Label,Derivation
AESER,Serious Event,If AESEV is 'SEVERE' then 'Y' else 'N'
ADURN,Analysis Duration (days),Calculate as (AEENDTC - AESTDTC) + 1
`
	rows, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "AESER", rows[0].Variable)
	assert.Equal(t, "Serious Event", rows[0].Label)
	assert.Equal(t, "Calculate as (AEENDTC - AESTDTC) + 1", rows[1].Derivation)
}

func TestParse_ColumnOrderAndCaseInsensitive(t *testing.T) {
	content := "derivation,variable\nsome logic,AESER\n"
	rows, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AESER", rows[0].Variable)
	assert.Equal(t, "some logic", rows[0].Derivation)
	assert.Empty(t, rows[0].Label)
}

func TestParse_ShortRowsYieldEmptyFields(t *testing.T) {
	content := "variable,label,derivation\nAESER\n"
	rows, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AESER", rows[0].Variable)
	assert.Empty(t, rows[0].Derivation)
}

func TestParse_MissingRequiredHeaders(t *testing.T) {
	_, err := Parse(strings.NewReader("name,logic\na,b\n"))
	assert.Error(t, err)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("variable,label,derivation\nAGEGR1,Age Group 1,Categorize AGE\n"), 0644))

	rows, err := NewCSVLoader(path).Load()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AGEGR1", rows[0].Variable)
}

func TestCSVLoader_MissingFile(t *testing.T) {
	_, err := NewCSVLoader(filepath.Join(t.TempDir(), "absent.csv")).Load()
	assert.Error(t, err)
}
