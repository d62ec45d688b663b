// Package errors provides structured error types for the STAATS pipeline.
// All errors carry a category, code and message so that callers can attach
// the offending entity name (recode, filter, class, tab title) and report
// failures consistently across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by pipeline component.
type ErrorCategory string

const (
	ErrCategoryFormula    ErrorCategory = "FORMULA"
	ErrCategorySchema     ErrorCategory = "SCHEMA"
	ErrCategoryEntity     ErrorCategory = "ENTITY"
	ErrCategoryRecode     ErrorCategory = "RECODE"
	ErrCategoryTabulation ErrorCategory = "TABULATION"
	ErrCategoryConfig     ErrorCategory = "CONFIG"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Formula codes
	CodeParseError = "PARSE_ERROR"
	CodeBadValue   = "BAD_VALUE"

	// Schema codes
	CodeUnknownVariable = "UNKNOWN_VARIABLE"

	// Entity codes
	CodeUnknownEntity = "UNKNOWN_ENTITY"
	CodeDuplicateName = "DUPLICATE_NAME"

	// Tabulation codes
	CodeTypeMismatch = "TYPE_MISMATCH"

	// Config codes
	CodeLoadFailed = "LOAD_FAILED"
	CodeSaveFailed = "SAVE_FAILED"

	// Storage codes
	CodePublishFailed = "PUBLISH_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// PipelineError is the structured error type used throughout the system.
type PipelineError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new PipelineError.
func New(category ErrorCategory, code, message string) *PipelineError {
	return &PipelineError{Category: category, Code: code, Message: message}
}

// Newf creates a new PipelineError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Category: category, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new PipelineError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *PipelineError {
	return &PipelineError{Category: category, Code: code, Message: message, Cause: cause}
}

// Wrapf creates a new PipelineError wrapping an existing error with a
// formatted message.
func Wrapf(category ErrorCategory, code string, cause error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Category: category, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCategory(err error) ErrorCategory {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a PipelineError.
func GetCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Convenience constructors for common errors.

// NewParseError reports a formula that yields no atomic conditions or
// contains characters outside the accepted grammar.
func NewParseError(format string, args ...interface{}) *PipelineError {
	return Newf(ErrCategoryFormula, CodeParseError, format, args...)
}

// NewUnknownVariable reports a formula referencing a variable absent from
// the active schema.
func NewUnknownVariable(variable, formula string) *PipelineError {
	return Newf(ErrCategorySchema, CodeUnknownVariable, "variable %q not in datamap (formula %q)", variable, formula)
}

// NewUnknownEntity reports a filter/class/recode name that is not
// registered.
func NewUnknownEntity(kind, name string) *PipelineError {
	return Newf(ErrCategoryEntity, CodeUnknownEntity, "%s %q not registered", kind, name)
}

// NewTypeMismatch reports a variable used in a position its kind does not
// allow.
func NewTypeMismatch(format string, args ...interface{}) *PipelineError {
	return Newf(ErrCategoryTabulation, CodeTypeMismatch, format, args...)
}
