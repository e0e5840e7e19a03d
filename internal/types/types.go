// Package types holds the shared domain model for the derivation pipeline:
// derivation tasks, execution results, and the artifacts the session exposes
// for export.
package types

import "time"

// Language identifies a target language for generated or converted code.
type Language string

const (
	LanguageR      Language = "r"
	LanguagePython Language = "python"
	LanguageSAS    Language = "sas"
)

// Valid reports whether l is one of the supported target languages.
func (l Language) Valid() bool {
	switch l {
	case LanguageR, LanguagePython, LanguageSAS:
		return true
	}
	return false
}

// DisplayName returns the conventional spelling for file labels and logs.
func (l Language) DisplayName() string {
	switch l {
	case LanguageR:
		return "R"
	case LanguagePython:
		return "Python"
	case LanguageSAS:
		return "SAS"
	}
	return string(l)
}

// FileExtension returns the source-file extension for the language.
func (l Language) FileExtension() string {
	switch l {
	case LanguagePython:
		return ".py"
	case LanguageSAS:
		return ".sas"
	}
	return ".R"
}

// SpecRow is one record from an ingested specification file.
type SpecRow struct {
	Variable   string
	Label      string
	Derivation string
}

// DerivationTask is one requested variable derivation awaiting approval.
// IDs are assigned sequentially at ingestion and are stable for the session.
type DerivationTask struct {
	ID         int
	Variable   string
	Label      string
	Derivation string
	// Prompt is seeded from Variable+Derivation at creation and may diverge
	// after user edits. It is what the combined prompt embeds, not Derivation.
	Prompt     string
	IsApproved bool
}

// Row is a single free-form record predicted by the execution oracle.
// Keys are not schema-checked.
type Row map[string]any

// ExecutionFailure is the structured failure reported by the simulation
// oracle. Line is the approximate source line inside the generated function,
// zero when the oracle omitted it.
type ExecutionFailure struct {
	Message string
	Line    int
}

// ExecutionResult is the outcome of a simulated run: exactly one of Failure
// or the success payload (LogOutput, Rows) holds.
type ExecutionResult struct {
	LogOutput string
	Rows      []Row
	Failure   *ExecutionFailure
}

// Succeeded reports whether the simulated run completed without a failure.
func (r ExecutionResult) Succeeded() bool { return r.Failure == nil }

// ConvertedArtifact is a translation of the generated code into another
// target language. FromRevision records which generation revision it was
// translated from; a mismatch with the current revision means the conversion
// is stale, which the session surfaces but does not auto-clear.
type ConvertedArtifact struct {
	Language     Language
	Code         string
	FromRevision int
}

// Severity classifies session log entries.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeveritySystem  Severity = "system"
)

// LogEntry is one user-visible session log record.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Severity  Severity
}

// Artifact is an exportable file produced by the pipeline.
type Artifact struct {
	Filename string
	Content  string
	MimeType string
	// Available is false when the underlying session state has not been
	// produced yet; unavailable artifacts carry no content.
	Available bool
}
