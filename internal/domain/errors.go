package domain

import "fmt"

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
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeStorage       = "STORAGE_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidChunkConfig   = NewDomainError(ErrCodeValidation, "chunk overlap must be smaller than chunk size")
	ErrInvalidSearchLimit   = NewDomainError(ErrCodeValidation, "search limit must be a positive integer")
	ErrUnsupportedFileType  = NewDomainError(ErrCodeValidation, "unsupported file type, expected PDF or plain text")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "query cannot be empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrLessonNotFound     = NewDomainError(ErrCodeNotFound, "lesson not found")
	ErrModuleNotFound     = NewDomainError(ErrCodeNotFound, "module not found")
	ErrTranscriptNotFound = NewDomainError(ErrCodeNotFound, "transcript not available for video")
)

// Provider errors
var (
	ErrEmbeddingProviderUnavailable = NewDomainError(ErrCodeProvider, "embedding provider unavailable")
	ErrInsightProviderUnavailable   = NewDomainError(ErrCodeProvider, "insight provider unavailable")
)

// Storage errors
var (
	ErrMediaStoreFailed = NewDomainError(ErrCodeStorage, "media storage operation failed")
)
