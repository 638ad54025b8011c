// Package errors provides standardized error handling for the loan-assessment
// workflow, including conversion to BPMN errors for the Zeebe surface.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Upstream data errors, recovered by the orchestrator fallback policy.
	ErrCodeImageryFetchFailed       ErrorCode = "IMAGERY_FETCH_FAILED"
	ErrCodeWeatherFetchFailed       ErrorCode = "WEATHER_FETCH_FAILED"
	ErrCodeInsufficientSamples      ErrorCode = "INSUFFICIENT_SAMPLES"
	ErrCodeDeforestationDataMissing ErrorCode = "DEFORESTATION_DATA_MISSING"

	// Request errors reject before the pipeline starts, never defaulted.
	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"

	// Storage / notification errors on the recording path.
	ErrCodeLedgerWriteFailed      ErrorCode = "LEDGER_WRITE_FAILED"
	ErrCodeDuplicateDecision      ErrorCode = "DUPLICATE_DECISION"
	ErrCodeDecisionIndexFailed    ErrorCode = "DECISION_INDEX_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeCacheUnavailable       ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewImageryFetchFailedError creates a retryable imagery provider error.
func NewImageryFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImageryFetchFailed,
		Message:   "Satellite imagery fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWeatherFetchFailedError creates a retryable weather provider error.
func NewWeatherFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWeatherFetchFailed,
		Message:   "Weather history fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientSamplesError flags a vegetation series too short to trust.
func NewInsufficientSamplesError(got, want int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientSamples,
		Message:   "Not enough usable vegetation samples",
		Details:   fmt.Sprintf("got %d samples, need at least %d", got, want),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeforestationDataMissingError flags absent baseline or recent NDVI.
// The detector never guesses; the orchestrator substitutes the fallback.
func NewDeforestationDataMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeforestationDataMissing,
		Message:   "Historical or recent vegetation sample unavailable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestValidationFailedError creates a non-retryable request error.
func NewRequestValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Assessment request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLedgerWriteFailedError creates a retryable decision-store error.
func NewLedgerWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerWriteFailed,
		Message:   "Decision ledger write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateDecisionError creates a non-retryable duplicate record error.
func NewDuplicateDecisionError(requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateDecision,
		Message:   "Decision already recorded for request",
		Details:   fmt.Sprintf("requestId: %s", requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionIndexFailedError creates a retryable search-index error.
func NewDecisionIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionIndexFailed,
		Message:   "Decision document indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Decision notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The codes
// are identical so BPMN boundary events can match on them directly.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeImageryFetchFailed:       "IMAGERY_FETCH_FAILED",
	ErrCodeWeatherFetchFailed:       "WEATHER_FETCH_FAILED",
	ErrCodeInsufficientSamples:      "INSUFFICIENT_SAMPLES",
	ErrCodeDeforestationDataMissing: "DEFORESTATION_DATA_MISSING",
	ErrCodeRequestValidationFailed:  "REQUEST_VALIDATION_FAILED",
	ErrCodeLedgerWriteFailed:        "LEDGER_WRITE_FAILED",
	ErrCodeDuplicateDecision:        "DUPLICATE_DECISION",
	ErrCodeDecisionIndexFailed:      "DECISION_INDEX_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeCacheUnavailable:         "CACHE_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLedgerWriteFailed,
		ErrCodeDecisionIndexFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeImageryFetchFailed,
		ErrCodeWeatherFetchFailed:
		// Upstream fetches are retried once before the orchestrator
		// falls back to neutral values.
		return 1

	default:
		return 0 // Business / validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "IMAGERY") || strings.Contains(codeStr, "SAMPLES") || strings.Contains(codeStr, "DEFORESTATION"):
		return "SATELLITE"
	case strings.Contains(codeStr, "WEATHER"):
		return "WEATHER"
	case strings.Contains(codeStr, "LEDGER") || strings.Contains(codeStr, "DECISION"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
