package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors (not retryable without changing the input)
const (
	// ErrCodeUnsupportedFormat indicates the input file is neither a
	// recognized audio nor video container.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeInvalidInput indicates the request failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Stage errors
const (
	// ErrCodeExtractionFailed indicates the external decode tool exited
	// non-zero or timed out.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodeModelLoadFailed indicates the named model could not be
	// fetched or loaded.
	ErrCodeModelLoadFailed ErrorCode = "MODEL_LOAD_FAILED"
	// ErrCodeInferenceFailed indicates the recognition engine failed
	// mid-run.
	ErrCodeInferenceFailed ErrorCode = "INFERENCE_FAILED"
	// ErrCodeWriteFailed indicates the output document could not be
	// written.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"
)

// Run termination
const (
	// ErrCodeCancelled indicates the run was interrupted by the user.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExtractionFailed: true,
	ErrCodeModelLoadFailed:  true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

// Process exit codes for terminal run states.
const (
	// ExitFailed is returned when the run ends in the Failed state.
	ExitFailed = 1
	// ExitUsage is returned for invalid invocations.
	ExitUsage = 2
	// ExitCancelled is returned when the run ends in the Cancelled state.
	ExitCancelled = 130
)

// ExitCode maps an error to the process exit code for its terminal state.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Code(err) {
	case ErrCodeCancelled:
		return ExitCancelled
	case ErrCodeInvalidInput:
		return ExitUsage
	default:
		return ExitFailed
	}
}
