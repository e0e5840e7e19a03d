package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt rejects a generation request with no prompt text.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrEmptyResponse reports a backend that answered with no usable text.
	ErrEmptyResponse = errors.New("backend returned empty response")
	// ErrNoTransport reports a transport chain with nothing configured.
	ErrNoTransport = errors.New("no backend transport configured")
)

// TransportError is a non-2xx answer from the proxy backend. Status and Body
// are surfaced verbatim so the user can see exactly what the proxy said.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("proxy request failed with status %d: %s", e.Status, e.Body)
}

// ProviderError wraps a failure from the direct provider.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
