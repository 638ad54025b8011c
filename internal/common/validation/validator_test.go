// internal/common/validation/validator_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAssessmentRequest(t *testing.T) {
	valid := `{
		"requestId": "req-001",
		"latitude": -1.29,
		"longitude": 36.82,
		"radiusKm": 2.5,
		"loanAmount": 1500,
		"purpose": "drip irrigation upgrade"
	}`
	require.NoError(t, ValidateAssessmentRequest([]byte(valid)))
}

func TestValidateAssessmentRequestAllowsExtraVariables(t *testing.T) {
	// Workflow instances carry unrelated variables alongside the request.
	withExtras := `{
		"latitude": 10.0,
		"longitude": 20.0,
		"loanAmount": 900,
		"purpose": "seed stock",
		"processStartedBy": "portal",
		"correlationKey": "abc"
	}`
	require.NoError(t, ValidateAssessmentRequest([]byte(withExtras)))
}

func TestValidateAssessmentRequestRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing loan amount", `{"latitude": 1, "longitude": 2, "purpose": "x"}`},
		{"zero loan amount", `{"latitude": 1, "longitude": 2, "loanAmount": 0, "purpose": "x"}`},
		{"negative loan amount", `{"latitude": 1, "longitude": 2, "loanAmount": -50, "purpose": "x"}`},
		{"latitude too large", `{"latitude": 91, "longitude": 2, "loanAmount": 100, "purpose": "x"}`},
		{"longitude too small", `{"latitude": 1, "longitude": -181, "loanAmount": 100, "purpose": "x"}`},
		{"empty purpose", `{"latitude": 1, "longitude": 2, "loanAmount": 100, "purpose": ""}`},
		{"purpose wrong type", `{"latitude": 1, "longitude": 2, "loanAmount": 100, "purpose": 7}`},
		{"degenerate polygon", `{"latitude": 1, "longitude": 2, "loanAmount": 100, "purpose": "x", "polygon": [[1,2],[3,4]]}`},
		{"not json", `{broken`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssessmentRequest([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "REQUEST_VALIDATION_FAILED")
		})
	}
}
