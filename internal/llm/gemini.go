package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-pro"

// GeminiTransport is the direct-provider backend: a single generate-content
// call against the Gemini API.
type GeminiTransport struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the direct provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiTransport creates the direct-provider transport. An empty API key
// yields an unconfigured transport that the selection chain skips.
func NewGeminiTransport(cfg GeminiConfig) (*GeminiTransport, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &GeminiTransport{model: model}, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTransport{client: client, model: model}, nil
}

func (t *GeminiTransport) Name() string { return "gemini" }

func (t *GeminiTransport) Configured() bool { return t.client != nil }

// Model returns the model identifier used for completions.
func (t *GeminiTransport) Model() string { return t.model }

// Invoke sends the prompt and returns the response text. Provider-level
// failures surface as *ProviderError.
func (t *GeminiTransport) Invoke(ctx context.Context, req Request) (string, error) {
	if t.client == nil {
		return "", &ProviderError{Err: fmt.Errorf("Gemini API key is not configured")}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if req.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", &ProviderError{Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
