package llm

import (
	"context"
	"strings"

	"clinweaver/internal/types"
)

// MockTransport is the deterministic local stand-in for the generation
// backend. It inspects the prompt for marker substrings to detect the intent
// (generation, simulation, repair, conversion) and returns a canned,
// syntactically plausible answer. There is no randomness: identical prompts
// yield identical output, so the rest of the pipeline is exercisable and
// testable without any external dependency.
type MockTransport struct{}

// NewMockTransport creates the mock backend.
func NewMockTransport() *MockTransport { return &MockTransport{} }

func (t *MockTransport) Name() string { return "mock" }

// Configured is always true; the mock is the guaranteed tail of the chain.
func (t *MockTransport) Configured() bool { return true }

func (t *MockTransport) Invoke(_ context.Context, req Request) (string, error) {
	prompt := req.Prompt
	switch {
	case strings.Contains(prompt, "execution simulator"):
		return mockSimulationJSON, nil
	case strings.Contains(prompt, "failed during execution"):
		return mockRepairedScript, nil
	case strings.Contains(prompt, "Convert the following"):
		return mockConversion(prompt), nil
	case strings.Contains(prompt, "create_adae"):
		return mockGeneratedFunction, nil
	}
	return mockGenericAnswer, nil
}

func mockConversion(prompt string) string {
	target := types.LanguagePython
	if strings.Contains(prompt, "to SAS.") {
		target = types.LanguageSAS
	} else if strings.Contains(prompt, "to R.") {
		target = types.LanguageR
	}
	switch target {
	case types.LanguageSAS:
		return mockConvertedSAS
	case types.LanguageR:
		return mockGeneratedFunction
	}
	return mockConvertedPython
}

const mockGeneratedFunction = "Here is the requested derivation function.\n\n```r\ncreate_adae <- function(adsl, ae) {\n  ae %>%\n    dplyr::inner_join(adsl, by = \"USUBJID\") %>%\n    dplyr::mutate(\n      AESER = dplyr::if_else(AESEV == \"SEVERE\", \"Y\", \"N\"),\n      ADURN = as.numeric(as.Date(AEENDTC) - as.Date(AESTDTC)) + 1,\n      AGEGR1 = dplyr::case_when(\n        AGE < 18 ~ \"<18\",\n        AGE <= 64 ~ \"18-64\",\n        TRUE ~ \">=65\"\n      )\n    )\n}\n```"

const mockRepairedScript = "The pipe operator was used without loading its package. Corrected script:\n\n```r\nlibrary(dplyr)\n\ncreate_adae <- function(adsl, ae) {\n  ae %>%\n    dplyr::inner_join(adsl, by = \"USUBJID\") %>%\n    dplyr::mutate(AESER = dplyr::if_else(AESEV == \"SEVERE\", \"Y\", \"N\"))\n}\n```"

const mockConvertedPython = "```python\nimport pandas as pd\n\n\ndef create_adae(adsl, ae):\n    adae = ae.merge(adsl, on=\"USUBJID\")\n    adae[\"AESER\"] = (adae[\"AESEV\"] == \"SEVERE\").map({True: \"Y\", False: \"N\"})\n    return adae\n```"

const mockConvertedSAS = "```sas\nproc sql;\n  create table adae as\n  select ae.*, adsl.AGE, adsl.SEX, adsl.TRT01A,\n         case when ae.AESEV = 'SEVERE' then 'Y' else 'N' end as AESER\n  from ae inner join adsl\n    on ae.USUBJID = adsl.USUBJID;\nquit;\n```"

const mockSimulationJSON = `{"status":"success","logOutput":"Loading required package: dplyr\nJoining ae to adsl by USUBJID\n# A tibble: 2 x 4\n  USUBJID  AESEV    AESER ADURN\n  SUBJ-001 SEVERE   Y         6\n  SUBJ-002 MODERATE N         3","finalData":[{"USUBJID":"SUBJ-001","AESEV":"SEVERE","AESER":"Y","ADURN":6},{"USUBJID":"SUBJ-002","AESEV":"MODERATE","AESER":"N","ADURN":3}]}`

const mockGenericAnswer = "```r\n# No specific intent detected in the prompt; returning a placeholder.\nmessage(\"clinweaver mock backend\")\n```"
