// Package session owns the pipeline's mutable state: the task registry, the
// generated and converted artifacts, the current execution error, and the
// per-stage busy flags. There are no ambient globals; everything flows
// through an explicit Session owned by the caller.
//
// Stages (generate, simulate, fix, convert) may run concurrently with each
// other since they mutate disjoint state, but re-entry into a stage that is
// already in flight is rejected with ErrStageBusy. All state access is
// serialized by one mutex; backend calls happen outside it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"clinweaver/internal/convert"
	"clinweaver/internal/llm"
	"clinweaver/internal/prompt"
	"clinweaver/internal/registry"
	"clinweaver/internal/repair"
	"clinweaver/internal/simulate"
	"clinweaver/internal/types"
)

// Stage identifies one independently triggerable pipeline operation.
type Stage string

const (
	StageGenerate Stage = "generate"
	StageSimulate Stage = "simulate"
	StageFix      Stage = "fix"
	StageConvert  Stage = "convert"
)

// ErrStageBusy rejects re-entry into a stage that is already in flight.
type ErrStageBusy struct {
	Stage Stage
}

func (e *ErrStageBusy) Error() string {
	return fmt.Sprintf("stage %s is already running", e.Stage)
}

// Validation errors: the stage precondition was not met. They block the
// stage and are surfaced to the user; no retry is needed, only more input.
var (
	ErrNoApprovedTasks  = errors.New("no derivation task is approved")
	ErrNoGeneratedCode  = errors.New("no generated code; run generation first")
	ErrNoExecutionError = errors.New("no execution error to fix")
)

// Session is the pipeline state plus the stage controllers operating on it.
type Session struct {
	client    *llm.Client
	interp    *simulate.Interpreter
	repairer  *repair.Controller
	converter *convert.Controller
	logger    *zap.Logger
	log       *Log

	mu             sync.Mutex
	tasks          []types.DerivationTask
	combinedPrompt string
	generatedCode  string
	revision       int
	driver         string
	execErr        *types.ExecutionFailure
	lastRun        *types.ExecutionResult
	converted      map[types.Language]types.ConvertedArtifact
	busy           map[Stage]bool
}

// New creates a session over the given generation client.
func New(client *llm.Client, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		client:    client,
		interp:    simulate.NewInterpreter(client),
		repairer:  repair.NewController(client, logger),
		converter: convert.NewController(client),
		logger:    logger,
		log:       NewLog(defaultLogCapacity),
		converted: make(map[types.Language]types.ConvertedArtifact),
		busy:      make(map[Stage]bool),
	}
}

// Log returns the user-visible session log.
func (s *Session) Log() *Log { return s.log }

// Repairer exposes the debug controller so callers can register extra
// local-fix heuristics.
func (s *Session) Repairer() *repair.Controller { return s.repairer }

// IngestSpec replaces the full task set from specification rows. Any prior
// tasks, compiled prompt, artifacts and execution error are discarded
// wholesale. Returns the number of tasks created; rows lacking a variable or
// derivation are silently dropped, observable only via the count.
func (s *Session) IngestSpec(rows []types.SpecRow) int {
	tasks := registry.Load(rows)

	s.mu.Lock()
	s.tasks = tasks
	s.combinedPrompt = ""
	s.generatedCode = ""
	s.driver = ""
	s.execErr = nil
	s.lastRun = nil
	s.converted = make(map[types.Language]types.ConvertedArtifact)
	s.mu.Unlock()

	if dropped := len(rows) - len(tasks); dropped > 0 {
		s.logf(types.SeverityInfo, "%d specification row(s) skipped: missing variable or derivation", dropped)
	}
	s.logf(types.SeveritySystem, "%d derivation tasks created from spec. Review and approve them to proceed.", len(tasks))
	return len(tasks)
}

// Tasks returns a copy of the current task set.
func (s *Session) Tasks() []types.DerivationTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.DerivationTask, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// EditPrompt replaces the prompt of one task. Unknown ids are a no-op.
func (s *Session) EditPrompt(id int, text string) {
	s.mu.Lock()
	s.tasks = registry.EditPrompt(s.tasks, id, text)
	s.mu.Unlock()
}

// ToggleApproval flips one task's approval gate and logs the transition.
func (s *Session) ToggleApproval(id int) {
	s.mu.Lock()
	tasks, changed := registry.ToggleApproval(s.tasks, id)
	s.tasks = tasks
	s.mu.Unlock()

	if changed == nil {
		return
	}
	state := "unapproved"
	if changed.IsApproved {
		state = "approved"
	}
	s.logf(types.SeverityInfo, "Task for '%s' %s.", changed.Variable, state)
}

// Generate compiles the combined prompt for the approved tasks and requests
// the derivation function from the backend. The generated artifact is
// overwritten wholesale on success; on failure all prior state stays intact
// so the user can retry.
func (s *Session) Generate(ctx context.Context) (string, error) {
	if err := s.beginStage(StageGenerate); err != nil {
		return "", err
	}
	defer s.endStage(StageGenerate)

	s.mu.Lock()
	compiled := prompt.CompileCombined(s.tasks)
	s.mu.Unlock()

	if compiled == "" {
		s.logf(types.SeverityError, "Please approve at least one derivation task before generating code.")
		return "", ErrNoApprovedTasks
	}

	s.mu.Lock()
	s.combinedPrompt = compiled
	s.mu.Unlock()
	s.logf(types.SeveritySystem, "Combined prompt created for approved tasks. Sending to backend.")

	code, err := s.client.GenerateCode(ctx, compiled, types.LanguageR)
	if err != nil {
		s.logf(types.SeverityError, "Code generation failed: %v", err)
		return "", err
	}

	s.mu.Lock()
	s.generatedCode = code
	s.revision++
	s.driver = DriverScript()
	s.mu.Unlock()

	s.logf(types.SeveritySuccess, "R code generated successfully.")
	return code, nil
}

// GeneratedCode returns the current generated artifact.
func (s *Session) GeneratedCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generatedCode
}

// SetGeneratedCode replaces the artifact with a user edit.
func (s *Session) SetGeneratedCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedCode = code
	s.revision++
}

// CombinedPrompt returns the last compiled combined prompt.
func (s *Session) CombinedPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.combinedPrompt
}

// Driver returns the companion driver script.
func (s *Session) Driver() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver
}

// ExecutionError returns the currently displayed execution failure, nil when
// the last simulated run succeeded or no run happened yet.
func (s *Session) ExecutionError() *types.ExecutionFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execErr == nil {
		return nil
	}
	e := *s.execErr
	return &e
}

// LastRun returns the most recent successful simulation result.
func (s *Session) LastRun() *types.ExecutionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return nil
	}
	r := *s.lastRun
	return &r
}

// Simulate asks the execution oracle to predict the outcome of running the
// driver against the generated code. A successful run stores the output
// preview and clears the execution error; a reported failure becomes the new
// execution error. Contract violations (FormatError) change no state.
func (s *Session) Simulate(ctx context.Context) (types.ExecutionResult, error) {
	if err := s.beginStage(StageSimulate); err != nil {
		return types.ExecutionResult{}, err
	}
	defer s.endStage(StageSimulate)

	s.mu.Lock()
	code, driver := s.generatedCode, s.driver
	s.mu.Unlock()
	if code == "" {
		s.logf(types.SeverityError, "No code to execute. Please generate code first.")
		return types.ExecutionResult{}, ErrNoGeneratedCode
	}

	s.logf(types.SeveritySystem, "Simulating R code execution...")
	result, err := s.interp.SimulateExecution(ctx, driver, code)
	if err != nil {
		s.logf(types.SeverityError, "Execution simulation failed: %v", err)
		return types.ExecutionResult{}, err
	}

	s.mu.Lock()
	if result.Succeeded() {
		s.lastRun = &result
		s.execErr = nil
	} else {
		failure := *result.Failure
		s.execErr = &failure
	}
	s.mu.Unlock()

	if result.Succeeded() {
		s.logf(types.SeveritySuccess, "Execution successful. Dataset created with %d row(s).", len(result.Rows))
	} else {
		s.logf(types.SeverityError, "Execution failed: %s", result.Failure.Message)
	}
	return result, nil
}

// RequestFix routes the current execution error through the debug loop. On
// success the fix is applied (to the driver or the generated code) and the
// error is cleared; on failure the error is kept so the user can retry.
func (s *Session) RequestFix(ctx context.Context) (repair.Fix, error) {
	if err := s.beginStage(StageFix); err != nil {
		return repair.Fix{}, err
	}
	defer s.endStage(StageFix)

	s.mu.Lock()
	execErr := s.execErr
	code, driver := s.generatedCode, s.driver
	s.mu.Unlock()
	if execErr == nil {
		return repair.Fix{}, ErrNoExecutionError
	}

	fix, err := s.repairer.RequestFix(ctx, *execErr, code, driver)
	if err != nil {
		s.logf(types.SeverityError, "Fix request failed: %v", err)
		return repair.Fix{}, err
	}

	s.mu.Lock()
	s.driver = fix.Driver
	if fix.Target == repair.TargetCode {
		s.generatedCode = fix.Code
		s.revision++
	}
	s.execErr = nil
	s.mu.Unlock()

	s.logf(types.SeveritySuccess, "Fix applied: %s.", fix.Note)
	return fix, nil
}

// Convert translates the generated code into the target language and stores
// the result keyed by that language. Conversions for other languages are
// untouched; an existing conversion for the same language is replaced. A
// conversion is not invalidated when the generated code later changes — its
// FromRevision lets callers detect staleness.
func (s *Session) Convert(ctx context.Context, target types.Language) (types.ConvertedArtifact, error) {
	if err := s.beginStage(StageConvert); err != nil {
		return types.ConvertedArtifact{}, err
	}
	defer s.endStage(StageConvert)

	s.mu.Lock()
	code, revision := s.generatedCode, s.revision
	s.mu.Unlock()
	if code == "" {
		return types.ConvertedArtifact{}, ErrNoGeneratedCode
	}

	artifact, err := s.converter.Convert(ctx, code, types.LanguageR, target)
	if err != nil {
		s.logf(types.SeverityError, "Conversion to %s failed: %v", target.DisplayName(), err)
		return types.ConvertedArtifact{}, err
	}
	artifact.FromRevision = revision

	s.mu.Lock()
	s.converted[target] = artifact
	s.mu.Unlock()

	s.logf(types.SeveritySuccess, "Code converted to %s.", target.DisplayName())
	return artifact, nil
}

// Converted returns the stored conversion for the language, if any, and
// whether it is stale relative to the current generated code.
func (s *Session) Converted(lang types.Language) (types.ConvertedArtifact, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.converted[lang]
	stale := ok && artifact.FromRevision != s.revision
	return artifact, ok, stale
}

// Busy reports whether a stage is currently in flight.
func (s *Session) Busy(stage Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[stage]
}

func (s *Session) beginStage(stage Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[stage] {
		return &ErrStageBusy{Stage: stage}
	}
	s.busy[stage] = true
	return nil
}

func (s *Session) endStage(stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy[stage] = false
}

func (s *Session) logf(severity types.Severity, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	s.log.Append(severity, message)
	switch severity {
	case types.SeverityError:
		s.logger.Warn(message)
	default:
		s.logger.Info(message)
	}
}
