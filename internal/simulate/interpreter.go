// Package simulate asks the generation backend to act as an execution
// oracle and validates its answer against a strict JSON contract. The raw
// response is untrusted free text; this package is the only seam protecting
// the rest of the pipeline from malformed model output, so validation is
// deliberately unforgiving.
package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"clinweaver/internal/llm"
	"clinweaver/internal/prompt"
	"clinweaver/internal/types"
)

// FormatError reports a simulator response that violates the JSON contract.
// It is never retried automatically.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid simulator response: %s", e.Reason)
}

// Interpreter requests simulated executions through the generation client.
type Interpreter struct {
	client *llm.Client
}

// NewInterpreter creates an interpreter over the given client.
func NewInterpreter(client *llm.Client) *Interpreter {
	return &Interpreter{client: client}
}

// rawResult mirrors the wire contract. Pointer fields distinguish absent
// from empty during validation.
type rawResult struct {
	Status    *string         `json:"status"`
	LogOutput *string         `json:"logOutput"`
	FinalData []types.Row     `json:"finalData"`
	Error     *rawResultError `json:"error"`
}

type rawResultError struct {
	Message *string `json:"message"`
	Line    *int    `json:"line"`
}

// SimulateExecution asks the backend to predict the outcome of running the
// driver against the generated function. The response must be exactly one
// JSON object matching the simulator contract; anything else is a
// *FormatError. A parsed "error" status is not a fault of this stage — it is
// domain feedback returned inside the ExecutionResult.
func (i *Interpreter) SimulateExecution(ctx context.Context, driverCode, functionCode string) (types.ExecutionResult, error) {
	p := prompt.CompileSimulation(driverCode, functionCode)
	response, err := i.client.Complete(ctx, llm.Request{Prompt: p, JSONOutput: true})
	if err != nil {
		return types.ExecutionResult{}, err
	}
	return Parse(response)
}

// Parse validates a raw simulator response against the contract. No partial
// recovery is attempted: a response that is not valid JSON, lacks the status
// discriminant, or misses the required fields for its discriminant is
// rejected wholesale.
func Parse(response string) (types.ExecutionResult, error) {
	trimmed := stripJSONFence(response)

	var raw rawResult
	decoder := json.NewDecoder(strings.NewReader(trimmed))
	if err := decoder.Decode(&raw); err != nil {
		return types.ExecutionResult{}, &FormatError{Reason: "not valid JSON"}
	}
	// The contract is one JSON object and nothing else.
	if _, err := decoder.Token(); err != io.EOF {
		return types.ExecutionResult{}, &FormatError{Reason: "trailing content after JSON object"}
	}

	if raw.Status == nil {
		return types.ExecutionResult{}, &FormatError{Reason: `missing "status" field`}
	}

	switch *raw.Status {
	case "success":
		if raw.LogOutput == nil {
			return types.ExecutionResult{}, &FormatError{Reason: `success payload missing "logOutput"`}
		}
		if raw.FinalData == nil {
			return types.ExecutionResult{}, &FormatError{Reason: `success payload missing "finalData"`}
		}
		return types.ExecutionResult{
			LogOutput: *raw.LogOutput,
			Rows:      raw.FinalData,
		}, nil

	case "error":
		if raw.Error == nil {
			return types.ExecutionResult{}, &FormatError{Reason: `error payload missing "error" object`}
		}
		if raw.Error.Message == nil {
			return types.ExecutionResult{}, &FormatError{Reason: `error payload missing "message"`}
		}
		failure := &types.ExecutionFailure{Message: *raw.Error.Message}
		if raw.Error.Line != nil {
			failure.Line = *raw.Error.Line
		}
		return types.ExecutionResult{Failure: failure}, nil
	}

	return types.ExecutionResult{}, &FormatError{
		Reason: fmt.Sprintf("unknown status %q", *raw.Status),
	}
}

// stripJSONFence tolerates a backend that wrapped the JSON object in a fence
// despite instructions. The object itself is still validated strictly.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
