// Package prompt compiles derivation tasks and pipeline requests into
// natural-language instructions for the generation backend. Every function
// here is pure; compiled prompts are recomputed on demand and never stored
// with identity.
package prompt

import (
	"fmt"
	"strings"

	"clinweaver/internal/types"
)

// CompileSingle renders the instruction for one derivation task. This is the
// template that seeds a task's editable prompt at ingestion.
func CompileSingle(task types.DerivationTask) string {
	return fmt.Sprintf(
		`Derive the variable "%s" using the following logic: %s. The new column should be added to the data frame.`,
		task.Variable, task.Derivation)
}

const combinedHeader = `You are an expert R programmer specializing in clinical trial data analysis and CDISC standards for SDTM and ADaM datasets.

Write a single R function with this exact signature:

    create_adae <- function(adsl, ae)

The function receives two data frames:
- 'adsl' (subject-level analysis data) with columns: USUBJID (character), AGE (numeric), SEX (character), TRT01A (character)
- 'ae' (adverse events) with columns: USUBJID (character), AETERM (character), AESEV (character, one of 'MILD', 'MODERATE', 'SEVERE'), AESTDTC (character, ISO 8601 date), AEENDTC (character, ISO 8601 date)

Join 'ae' to 'adsl' by USUBJID and perform the following derivations using dplyr, preferably within a single chained transformation:

`

const combinedFooter = `
The function must return the final ADAE data frame.
Return only the function definition. Do not include setup code, library() calls, or an example invocation.`

// CompileCombined renders the combined generation prompt for the approved
// subset of tasks, numbered 1-based in original relative order. It returns
// the empty string when no task is approved; callers must treat that as a
// precondition failure and not attempt generation.
func CompileCombined(tasks []types.DerivationTask) string {
	var numbered []string
	for _, t := range tasks {
		if !t.IsApproved {
			continue
		}
		numbered = append(numbered, fmt.Sprintf("%d. %s", len(numbered)+1, t.Prompt))
	}
	if len(numbered) == 0 {
		return ""
	}
	return combinedHeader + strings.Join(numbered, "\n") + combinedFooter
}

// CompileDebug renders the repair request for a failed script. The prompt
// embeds the faulty code and the structured error so the backend can return
// a corrected full script.
func CompileDebug(code, errorMessage string, line int) string {
	var sb strings.Builder
	sb.WriteString("The following R script failed during execution. Fix the bug and return the corrected full script.\n\n")
	sb.WriteString("Script:\n```r\n")
	sb.WriteString(code)
	sb.WriteString("\n```\n\nExecution error: ")
	sb.WriteString(errorMessage)
	if line > 0 {
		fmt.Fprintf(&sb, " (near line %d)", line)
	}
	sb.WriteString("\n\nReturn only the corrected script in a single fenced code block. Do not explain the fix.")
	return sb.String()
}

// CompileConversion renders the translation request for a generated script.
func CompileConversion(code string, source, target types.Language) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Convert the following %s code to %s.\n\n",
		source.DisplayName(), target.DisplayName())
	fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", string(source), code)
	fmt.Fprintf(&sb, "The translation must be functionally equivalent and idiomatic %s. ", target.DisplayName())
	sb.WriteString("Return a single fenced code block with no commentary.")
	return sb.String()
}

// CompileSimulation renders the execution-oracle request: given a driver
// script and a function-definition script, predict the outcome of running
// them and answer with exactly one JSON object matching the simulator
// contract.
func CompileSimulation(driverCode, functionCode string) string {
	var sb strings.Builder
	sb.WriteString("You are an R execution simulator. Predict the outcome of sourcing the function script below and then running the driver script, without actually executing anything.\n\n")
	sb.WriteString("Function script:\n```r\n")
	sb.WriteString(functionCode)
	sb.WriteString("\n```\n\nDriver script:\n```r\n")
	sb.WriteString(driverCode)
	sb.WriteString("\n```\n\n")
	sb.WriteString(`Respond with exactly one JSON object and nothing else. On success:
{"status":"success","logOutput":"<predicted console output>","finalData":[<one object per row of the final data frame>]}
On failure:
{"status":"error","error":{"message":"<what went wrong>","line":<approximate line number inside the function script, omit if unknown>}}`)
	return sb.String()
}
