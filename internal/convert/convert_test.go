package convert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinweaver/internal/llm"
	"clinweaver/internal/types"
)

func TestConvert_MockBackendProducesTargetArtifact(t *testing.T) {
	client, err := llm.NewClientFromOptions(llm.Options{ForceMock: true})
	require.NoError(t, err)
	ctrl := NewController(client)

	artifact, err := ctrl.Convert(context.Background(),
		"create_adae <- function(adsl, ae) ae", types.LanguageR, types.LanguagePython)
	require.NoError(t, err)
	assert.Equal(t, types.LanguagePython, artifact.Language)
	assert.Contains(t, artifact.Code, "def create_adae")
	assert.NotContains(t, artifact.Code, "```", "fence markers must be stripped")
}

func TestConvert_RejectsInvalidTarget(t *testing.T) {
	client, err := llm.NewClientFromOptions(llm.Options{ForceMock: true})
	require.NoError(t, err)
	ctrl := NewController(client)

	_, err = ctrl.Convert(context.Background(), "code", types.LanguageR, types.Language("cobol"))
	assert.Error(t, err)
}

func TestConvert_RejectsSameLanguage(t *testing.T) {
	client, err := llm.NewClientFromOptions(llm.Options{ForceMock: true})
	require.NoError(t, err)
	ctrl := NewController(client)

	_, err = ctrl.Convert(context.Background(), "code", types.LanguageR, types.LanguageR)
	assert.Error(t, err)
}
