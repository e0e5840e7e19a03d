package session

// DriverScript returns the companion R driver used for simulated executions:
// it builds small sample adsl/ae frames matching the combined-prompt column
// contract, calls the generated function, and prints the result. The script
// is a deterministic constant; the debug loop's local heuristics patch it in
// place (for example by prepending a library() call).
//
// Note the driver deliberately loads no packages itself: whether the
// generated function can run without them is part of what the simulation is
// meant to reveal.
func DriverScript() string {
	return `adsl <- data.frame(
  USUBJID = c("SUBJ-001", "SUBJ-002", "SUBJ-003"),
  AGE = c(25, 67, 16),
  SEX = c("F", "M", "F"),
  TRT01A = c("DRUG A", "PLACEBO", "DRUG A"),
  stringsAsFactors = FALSE
)

ae <- data.frame(
  USUBJID = c("SUBJ-001", "SUBJ-002", "SUBJ-003"),
  AETERM = c("HEADACHE", "NAUSEA", "DIZZINESS"),
  AESEV = c("SEVERE", "MODERATE", "MILD"),
  AESTDTC = c("2023-01-10", "2023-02-01", "2023-03-05"),
  AEENDTC = c("2023-01-15", "2023-02-03", "2023-03-06"),
  stringsAsFactors = FALSE
)

adae <- create_adae(adsl, ae)
print(head(adae))
str(adae)
`
}
