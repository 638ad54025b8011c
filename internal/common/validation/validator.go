// internal/common/validation/validator.go

// Package validation checks incoming job variables against JSON Schema
// before any pipeline work starts. Malformed requests are rejected with
// REQUEST_VALIDATION_FAILED and are never silently defaulted.
package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"agroscore/internal/common/errors"
)

const assessmentRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["latitude", "longitude", "loanAmount", "purpose"],
	"properties": {
		"requestId":      {"type": "string"},
		"latitude":       {"type": "number", "minimum": -90, "maximum": 90},
		"longitude":      {"type": "number", "minimum": -180, "maximum": 180},
		"radiusKm":       {"type": "number", "exclusiveMinimum": 0},
		"polygon": {
			"type": "array",
			"minItems": 3,
			"items": {
				"type": "array",
				"minItems": 2,
				"maxItems": 2,
				"items": {"type": "number"}
			}
		},
		"lookbackMonths": {"type": "integer", "minimum": 1, "maximum": 36},
		"baselineYears":  {"type": "integer", "minimum": 1, "maximum": 10},
		"loanAmount":     {"type": "number", "exclusiveMinimum": 0},
		"purpose":        {"type": "string", "minLength": 1},
		"farmerEmail":    {"type": "string"},
		"farmerPhone":    {"type": "string"}
	}
}`

var assessmentSchema = gojsonschema.NewStringLoader(assessmentRequestSchema)

// ValidateAssessmentRequest validates raw job variables for the assessment
// worker. Extra workflow variables are permitted; the listed fields must be
// well formed.
func ValidateAssessmentRequest(raw []byte) error {
	result, err := gojsonschema.Validate(assessmentSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return errors.NewRequestValidationFailedError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return errors.NewRequestValidationFailedError(strings.Join(details, "; "))
	}
	return nil
}
