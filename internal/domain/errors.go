package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Attempt lifecycle errors
	CodeQuizNotFound      ErrorCode = "QUIZ_NOT_FOUND"
	CodeAttemptNotFound   ErrorCode = "ATTEMPT_NOT_FOUND"
	CodeQuotaExceeded     ErrorCode = "QUOTA_EXCEEDED"
	CodeTimeLimitExceeded ErrorCode = "TIME_LIMIT_EXCEEDED"
	CodeAlreadySubmitted  ErrorCode = "ALREADY_SUBMITTED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

func NewAttemptNotFoundError(attemptID string) *DomainError {
	return NewError(CodeAttemptNotFound, fmt.Sprintf("Attempt not found with ID: %s", attemptID), nil)
}

// NewQuotaExceededError is returned when a user has used up the
// configured attempts_allowed for a quiz.
func NewQuotaExceededError(allowed int) *DomainError {
	return &DomainError{
		Code:    CodeQuotaExceeded,
		Message: fmt.Sprintf("Maximum number of attempts reached (%d allowed)", allowed),
		Context: map[string]interface{}{"attempts_allowed": allowed},
	}
}

// NewTimeLimitExceededError is returned when a submission arrives after
// the quiz time limit has elapsed.
func NewTimeLimitExceededError(limitMinutes int) *DomainError {
	return &DomainError{
		Code:    CodeTimeLimitExceeded,
		Message: fmt.Sprintf("Time limit exceeded (%d minutes allowed)", limitMinutes),
		Context: map[string]interface{}{"time_limit_minutes": limitMinutes},
	}
}

func NewAlreadySubmittedError(attemptID string) *DomainError {
	return NewError(CodeAlreadySubmitted, fmt.Sprintf("Attempt %s has already been submitted", attemptID), nil)
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level validation failures for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s (%d error(s))", e[0].Error(), len(e))
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeMissingField),
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeInvalidFormat),
		Message: fmt.Sprintf("%s has invalid format: %v", field, value),
	}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    string(CodeOutOfRange),
		Message: fmt.Sprintf("%s must be between %d and %d, got %d", field, min, max, value),
	}
}
