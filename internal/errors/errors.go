package errors

import "fmt"

// ErrorCode represents a Kapsel error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION" // 400
	ErrNotFound   ErrorCode = "NOT_FOUND"  // 404
	ErrConflict   ErrorCode = "CONFLICT"   // 409 (duplicate id on import)
	ErrInternal   ErrorCode = "INTERNAL"   // 500
	ErrCancelled  ErrorCode = "CANCELLED"  // 499
)

// KapselError represents a structured error with code, status, and details.
// Every public operation either returns a well-formed result or one of
// these; a missing entity is never papered over with a zero value.
type KapselError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *KapselError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for malformed or out-of-range input.
func NewValidation(msg string) *KapselError {
	return &KapselError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewValidationIssues creates a 400 error carrying the individual issues.
func NewValidationIssues(issues []string) *KapselError {
	return &KapselError{
		Code:    ErrValidation,
		Status:  400,
		Message: fmt.Sprintf("invalid input: %v", issues),
		Details: map[string]any{"issues": issues},
	}
}

// NewNotFound creates a 404 error for a missing capsule id.
func NewNotFound(id string) *KapselError {
	return &KapselError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewConflict creates a 409 error for id collisions.
func NewConflict(id string) *KapselError {
	return &KapselError{
		Code:    ErrConflict,
		Status:  409,
		Message: fmt.Sprintf("capsule already exists: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import/export file.
func NewFileNotFound(path string) *KapselError {
	return &KapselError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *KapselError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &KapselError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewCancelled creates an error for an operation cancelled via context.
func NewCancelled(operation string) *KapselError {
	return &KapselError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// Is checks if an error is a KapselError with the given code.
func Is(err error, code ErrorCode) bool {
	if kErr, ok := err.(*KapselError); ok {
		return kErr.Code == code
	}
	return false
}
