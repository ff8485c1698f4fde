// Package errors provides unified error handling for the transcription
// pipeline. It implements structured error types with error codes, stage
// attribution, and retryable detection.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified pipeline error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Stage names the pipeline stage that produced the error.
	Stage string `json:"stage,omitempty"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithStage tags the error with the pipeline stage that produced it and
// returns the receiver. An already-set stage is preserved so the
// originating stage survives propagation.
func (e *AppError) WithStage(stage string) *AppError {
	if e.Stage == "" {
		e.Stage = stage
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Code extracts the ErrorCode from err, or ErrCodeInternal if err is not
// an AppError.
func Code(err error) ErrorCode {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// Stage extracts the stage name from err, or "" if none is recorded.
func Stage(err error) string {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	return Code(err) == code
}

// --- Common Error Constructors ---

// UnsupportedFormat creates a new AppError for an unrecognized input file.
func UnsupportedFormat(path, ext string) *AppError {
	return &AppError{
		Code:      ErrCodeUnsupportedFormat,
		Message:   fmt.Sprintf("%q is not a supported audio or video format", ext),
		Retryable: false,
		Details:   map[string]any{"path": path, "extension": ext},
	}
}

// ExtractionFailed creates a new AppError for a failed external decode.
func ExtractionFailed(tool string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeExtractionFailed,
		Message:   fmt.Sprintf("audio extraction via %s failed", tool),
		Retryable: true,
		Details:   map[string]any{"tool": tool},
		Cause:     cause,
	}
}

// ModelLoadFailed creates a new AppError for a model fetch/load failure.
func ModelLoadFailed(model string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeModelLoadFailed,
		Message:   fmt.Sprintf("model %q could not be loaded; check the model name, network connectivity and the local model cache", model),
		Retryable: true,
		Details:   map[string]any{"model": model},
		Cause:     cause,
	}
}

// InferenceFailed creates a new AppError for an engine failure mid-run.
func InferenceFailed(engine string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeInferenceFailed,
		Message:   fmt.Sprintf("the %s engine failed during transcription", engine),
		Retryable: false,
		Details:   map[string]any{"engine": engine},
		Cause:     cause,
	}
}

// WriteFailed creates a new AppError for an output write failure.
func WriteFailed(path string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeWriteFailed,
		Message:   fmt.Sprintf("could not write output document to %s", path),
		Retryable: false,
		Details:   map[string]any{"path": path},
		Cause:     cause,
	}
}

// Cancelled creates a new AppError for a user-interrupted run.
func Cancelled(stage string) *AppError {
	return &AppError{
		Code:      ErrCodeCancelled,
		Stage:     stage,
		Message:   "run cancelled by user",
		Retryable: false,
	}
}

// InvalidInput creates a new AppError for invalid request input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:      ErrCodeInvalidInput,
		Message:   fmt.Sprintf("invalid input: %s", reason),
		Retryable: false,
		Details:   details,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code:      ErrCodeInternal,
		Message:   "an unexpected error occurred",
		Retryable: false,
		Cause:     cause,
	}
}
