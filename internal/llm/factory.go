package llm

import (
	"time"

	"go.uber.org/zap"
)

// Options resolves the backend chain once at startup.
type Options struct {
	// ProxyURL prefers the proxy transport when non-empty.
	ProxyURL string
	// APIKey enables the direct Gemini transport.
	APIKey string
	// Model overrides the direct provider's default model.
	Model string
	// ForceMock bypasses both real backends regardless of configuration.
	ForceMock bool
	// Timeout bounds each proxy call at the transport layer.
	Timeout time.Duration

	Recorder Recorder
	Logger   *zap.Logger
}

// NewClientFromOptions builds the transport chain in strict priority order:
// proxy, then direct provider, then mock. The mock is always appended so the
// chain can never be empty; ForceMock short-circuits to it alone.
func NewClientFromOptions(opts Options) (*Client, error) {
	var transports []Transport

	if !opts.ForceMock {
		transports = append(transports, NewProxyTransport(ProxyConfig{
			BaseURL: opts.ProxyURL,
			Timeout: opts.Timeout,
		}))

		gemini, err := NewGeminiTransport(GeminiConfig{
			APIKey: opts.APIKey,
			Model:  opts.Model,
		})
		if err != nil {
			return nil, err
		}
		transports = append(transports, gemini)
	}

	transports = append(transports, NewMockTransport())
	return NewClient(transports, opts.Recorder, opts.Logger), nil
}
