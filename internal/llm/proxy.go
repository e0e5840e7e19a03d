package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProxyTransport talks to a self-hosted generation proxy:
// POST {base}/api/generate with {"prompt": ...}, any 2xx answer carries the
// model output in a JSON text field (text, result, or output — first present
// wins).
type ProxyTransport struct {
	baseURL    string
	httpClient *http.Client
}

// ProxyConfig holds configuration for the proxy transport.
type ProxyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewProxyTransport creates a proxy transport. An empty base URL yields an
// unconfigured transport that the selection chain skips.
func NewProxyTransport(cfg ProxyConfig) *ProxyTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ProxyTransport{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (t *ProxyTransport) Name() string { return "proxy" }

func (t *ProxyTransport) Configured() bool { return t.baseURL != "" }

type proxyRequest struct {
	Prompt string `json:"prompt"`
}

type proxyResponse struct {
	Text   string `json:"text"`
	Result string `json:"result"`
	Output string `json:"output"`
}

// Invoke sends the prompt and returns the raw model output. Non-2xx answers
// become a *TransportError carrying the status and response body.
func (t *ProxyTransport) Invoke(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(proxyRequest{Prompt: req.Prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed proxyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse proxy response: %w", err)
	}

	switch {
	case parsed.Text != "":
		return parsed.Text, nil
	case parsed.Result != "":
		return parsed.Result, nil
	case parsed.Output != "":
		return parsed.Output, nil
	}
	return "", ErrEmptyResponse
}
