// Package llm implements the generation client: an ordered chain of backend
// transports (remote proxy, direct Gemini provider, deterministic mock) with
// fenced-code extraction applied to whatever the selected backend returns.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinweaver/internal/types"
)

// Request is a single backend invocation.
type Request struct {
	Prompt string
	// JSONOutput asks the backend for strict JSON-formatted output. Only the
	// direct provider can enforce it; other transports treat it as a hint.
	JSONOutput bool
}

// Transport is one backend strategy in the selection chain.
type Transport interface {
	// Name identifies the backend in logs and call records.
	Name() string
	// Configured reports whether this transport can be used at all. The
	// selection chain picks the first configured transport; the mock is
	// always configured.
	Configured() bool
	// Invoke sends the prompt and returns the raw model output.
	Invoke(ctx context.Context, req Request) (string, error)
}

// CallRecord describes one backend invocation for the audit trail.
type CallRecord struct {
	ID            string
	Backend       string
	PromptChars   int
	ResponseChars int
	Duration      time.Duration
	Err           string
	StartedAt     time.Time
}

// Recorder receives a CallRecord after every backend invocation, successful
// or not. Implementations must not block the caller for long.
type Recorder interface {
	Record(ctx context.Context, rec CallRecord)
}

// Client selects a backend per call and post-processes its response.
type Client struct {
	transports []Transport
	recorder   Recorder
	logger     *zap.Logger
}

// NewClient builds a client over an ordered transport chain. The caller is
// expected to place the mock transport last so at least one transport is
// always configured.
func NewClient(transports []Transport, recorder Recorder, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{transports: transports, recorder: recorder, logger: logger}
}

// Backend returns the transport the next call would use.
func (c *Client) Backend() Transport {
	for _, t := range c.transports {
		if t.Configured() {
			return t
		}
	}
	return nil
}

// Complete sends the prompt to the first configured transport and returns the
// raw response text. Transport selection happens once per call; a failure
// surfaces to the caller and never cascades to the next transport.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", ErrEmptyPrompt
	}
	transport := c.Backend()
	if transport == nil {
		return "", ErrNoTransport
	}

	start := time.Now()
	response, err := transport.Invoke(ctx, req)
	elapsed := time.Since(start)

	rec := CallRecord{
		ID:          uuid.NewString(),
		Backend:     transport.Name(),
		PromptChars: len(req.Prompt),
		Duration:    elapsed,
		StartedAt:   start,
	}
	if err != nil {
		rec.Err = err.Error()
	} else {
		rec.ResponseChars = len(response)
	}
	if c.recorder != nil {
		c.recorder.Record(ctx, rec)
	}

	if err != nil {
		c.logger.Warn("backend call failed",
			zap.String("backend", transport.Name()),
			zap.String("request_id", rec.ID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}
	c.logger.Debug("backend call complete",
		zap.String("backend", transport.Name()),
		zap.String("request_id", rec.ID),
		zap.Int("response_chars", len(response)),
		zap.Duration("elapsed", elapsed))

	if strings.TrimSpace(response) == "" {
		return "", ErrEmptyResponse
	}
	return response, nil
}

// GenerateCode sends the prompt and extracts the code block for the requested
// target language from the response. Extraction never fails on its own: a
// response without fences is returned whole, trimmed.
func (c *Client) GenerateCode(ctx context.Context, prompt string, target types.Language) (string, error) {
	response, err := c.Complete(ctx, Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return ExtractCode(response, target), nil
}
