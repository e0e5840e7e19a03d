// Package convert requests translations of generated code into other target
// languages. Each conversion is an independent artifact keyed by its target
// language; nothing here invalidates earlier conversions for other targets.
package convert

import (
	"context"
	"fmt"

	"clinweaver/internal/llm"
	"clinweaver/internal/prompt"
	"clinweaver/internal/types"
)

// Controller delegates translation requests to the generation client.
type Controller struct {
	client *llm.Client
}

// NewController creates a conversion controller.
func NewController(client *llm.Client) *Controller {
	return &Controller{client: client}
}

// Convert translates code from source to target and returns the new
// artifact. The target language doubles as the fence marker to extract from
// the backend response.
func (c *Controller) Convert(ctx context.Context, code string, source, target types.Language) (types.ConvertedArtifact, error) {
	if !target.Valid() {
		return types.ConvertedArtifact{}, fmt.Errorf("unsupported target language %q", target)
	}
	if source == target {
		return types.ConvertedArtifact{}, fmt.Errorf("source and target language are both %q", target)
	}

	p := prompt.CompileConversion(code, source, target)
	translated, err := c.client.GenerateCode(ctx, p, target)
	if err != nil {
		return types.ConvertedArtifact{}, err
	}
	return types.ConvertedArtifact{Language: target, Code: translated}, nil
}
