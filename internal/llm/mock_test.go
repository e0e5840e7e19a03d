package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinweaver/internal/prompt"
	"clinweaver/internal/types"
)

func TestMockTransport_Deterministic(t *testing.T) {
	mock := NewMockTransport()
	req := Request{Prompt: "Write a single R function with this exact signature: create_adae <- function(adsl, ae)"}

	first, err := mock.Invoke(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := mock.Invoke(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMockTransport_GenerationIntent(t *testing.T) {
	mock := NewMockTransport()
	out, err := mock.Invoke(context.Background(), Request{Prompt: "please define create_adae for me"})
	require.NoError(t, err)
	assert.Contains(t, out, "```r")
	assert.Contains(t, out, "create_adae <- function(adsl, ae)")
}

func TestMockTransport_SimulationIntentReturnsContractJSON(t *testing.T) {
	mock := NewMockTransport()
	p := prompt.CompileSimulation("driver", "func")
	out, err := mock.Invoke(context.Background(), Request{Prompt: p, JSONOutput: true})
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "success", parsed["status"])
	assert.NotEmpty(t, parsed["logOutput"])
	assert.NotEmpty(t, parsed["finalData"])
}

func TestMockTransport_RepairIntent(t *testing.T) {
	mock := NewMockTransport()
	p := prompt.CompileDebug("bad code", `could not find function "%>%"`, 0)
	out, err := mock.Invoke(context.Background(), Request{Prompt: p})
	require.NoError(t, err)
	assert.Contains(t, out, "library(dplyr)")
}

func TestMockTransport_ConversionIntentHonorsTarget(t *testing.T) {
	mock := NewMockTransport()

	py, err := mock.Invoke(context.Background(), Request{
		Prompt: prompt.CompileConversion("create_adae <- function(adsl, ae) ae", types.LanguageR, types.LanguagePython),
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(py, "```python"))

	sas, err := mock.Invoke(context.Background(), Request{
		Prompt: prompt.CompileConversion("create_adae <- function(adsl, ae) ae", types.LanguageR, types.LanguageSAS),
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(sas, "```sas"))
}
