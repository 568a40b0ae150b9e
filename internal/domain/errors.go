package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMalformedDocument = "MALFORMED_DOCUMENT"
	ErrCodeRetrievalFailed   = "RETRIEVAL_FAILED"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeTransportTimeout  = "TRANSPORT_TIMEOUT"
)

// Pipeline errors. Everything here is caught at the orchestrator boundary
// and converted to a degraded-but-valid result; nothing propagates past it.
var (
	// ErrMalformedDocument means a document had no extractable text. The
	// corpus loader skips the document and continues.
	ErrMalformedDocument = NewDomainError(ErrCodeMalformedDocument, "document has no extractable text")

	// ErrRetrievalFailed means the similarity search could not complete.
	// The orchestrator degrades to generation with empty context.
	ErrRetrievalFailed = NewDomainError(ErrCodeRetrievalFailed, "retrieval failed")

	// ErrGenerationFailed means the model call failed or returned an empty
	// response after the retry budget was spent. The orchestrator degrades
	// to a fixed fallback answer.
	ErrGenerationFailed = NewDomainError(ErrCodeGenerationFailed, "generation failed")

	// ErrTransportTimeout wraps a timed-out or transient embedding/LLM
	// transport failure. Eligible for exactly one retry before it becomes
	// ErrRetrievalFailed or ErrGenerationFailed.
	ErrTransportTimeout = NewDomainError(ErrCodeTransportTimeout, "upstream call timed out")
)

// Validation errors
var (
	ErrMissingCourseTitle = NewDomainError(ErrCodeValidation, "course title is required")
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query text is required")
)

// Not found errors
var (
	ErrCourseNotFound = NewDomainError(ErrCodeNotFound, "course not found")
)

// RetrievalError wraps err with the retrieval error code.
func RetrievalError(err error) error {
	return NewDomainErrorWithCause(ErrCodeRetrievalFailed, "retrieval failed", err)
}

// GenerationError wraps err with the generation error code.
func GenerationError(err error) error {
	return NewDomainErrorWithCause(ErrCodeGenerationFailed, "generation failed", err)
}

// TransportTimeoutError wraps err with the transport timeout error code.
func TransportTimeoutError(err error) error {
	return NewDomainErrorWithCause(ErrCodeTransportTimeout, "upstream call timed out", err)
}

// IsTransportTimeout reports whether err carries the transport timeout code.
func IsTransportTimeout(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeTransportTimeout
	}
	return false
}

// IsRetrievalError reports whether err carries the retrieval failure code.
func IsRetrievalError(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeRetrievalFailed
	}
	return false
}

// IsGenerationError reports whether err carries the generation failure code.
func IsGenerationError(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeGenerationFailed
	}
	return false
}
