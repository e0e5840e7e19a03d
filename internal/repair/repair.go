// Package repair drives the debug loop: given the structured error from a
// simulated execution and the faulty code, it either applies a local
// deterministic patch or asks the backend for a corrected script.
package repair

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"clinweaver/internal/llm"
	"clinweaver/internal/prompt"
	"clinweaver/internal/types"
)

// Target names the artifact a fix was applied to.
type Target string

const (
	TargetDriver Target = "driver"
	TargetCode   Target = "code"
)

// Fix is the outcome of a repair request. Code and Driver always carry the
// full post-fix scripts; Target says which of the two actually changed.
type Fix struct {
	Code   string
	Driver string
	Target Target
	// Note is a short human-readable description of what was done.
	Note string
}

// Heuristic is one known-error entry: when Pattern occurs in the execution
// error message, Patch rewrites the driver script locally with no backend
// round-trip. Matching is plain substring containment; these patterns are
// fragile by nature, which is why they live in a table rather than in
// control flow.
type Heuristic struct {
	Pattern string
	Note    string
	Patch   func(driver string) string
}

// DefaultHeuristics covers the error classes fixable without a model.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		{
			// The generated function uses the pipe but the driver never
			// loaded the package providing it.
			Pattern: `could not find function "%>%"`,
			Note:    "loaded dplyr in the driver script",
			Patch: func(driver string) string {
				if strings.Contains(driver, "library(dplyr)") {
					return driver
				}
				return "library(dplyr)\n\n" + driver
			},
		},
	}
}

// Controller evaluates the two-path repair policy.
type Controller struct {
	client     *llm.Client
	heuristics []Heuristic
	logger     *zap.Logger
}

// NewController creates a controller with the default heuristic table.
func NewController(client *llm.Client, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{client: client, heuristics: DefaultHeuristics(), logger: logger}
}

// AddHeuristic appends a local-fix entry. Entries are evaluated in order;
// the first match wins.
func (c *Controller) AddHeuristic(h Heuristic) {
	c.heuristics = append(c.heuristics, h)
}

// RequestFix resolves a repair for the given execution failure. A matching
// heuristic patches the driver locally and leaves the generated code
// untouched; otherwise the backend is asked for a corrected full script
// which replaces the code wholesale. An error return means nothing was
// fixed — the caller must keep its stored execution error so the user can
// retry.
func (c *Controller) RequestFix(ctx context.Context, failure types.ExecutionFailure, code, driver string) (Fix, error) {
	for _, h := range c.heuristics {
		if !strings.Contains(failure.Message, h.Pattern) {
			continue
		}
		c.logger.Info("applying local fix",
			zap.String("pattern", h.Pattern),
			zap.String("note", h.Note))
		return Fix{
			Code:   code,
			Driver: h.Patch(driver),
			Target: TargetDriver,
			Note:   h.Note,
		}, nil
	}

	p := prompt.CompileDebug(code, failure.Message, failure.Line)
	fixed, err := c.client.GenerateCode(ctx, p, types.LanguageR)
	if err != nil {
		return Fix{}, err
	}
	return Fix{
		Code:   fixed,
		Driver: driver,
		Target: TargetCode,
		Note:   "replaced generated code with AI-repaired script",
	}, nil
}
