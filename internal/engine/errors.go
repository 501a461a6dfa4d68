// internal/engine/errors.go
package engine

import (
	"context"
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrBrowserCrash    = errors.New("browser crashed")
	ErrTimeout         = errors.New("operation timeout")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrMissingURL      = errors.New("target URL is required")
	ErrNavigation      = errors.New("navigation failed")
	ErrSnapshot        = errors.New("failed to read event queue")
	ErrExport          = errors.New("export failed")
	ErrUnsupported     = errors.New("unsupported operation")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeConfig       ErrorCode = "CONFIG"
	ErrCodeNavigation   ErrorCode = "NAVIGATION"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeBrowserCrash ErrorCode = "BROWSER_CRASH"
	ErrCodeInteraction  ErrorCode = "INTERACTION"
	ErrCodeSnapshot     ErrorCode = "SNAPSHOT"
	ErrCodeExport       ErrorCode = "EXPORT"
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	// Deadline expiry is reported as a timeout regardless of the stage.
	if errors.Is(err, context.DeadlineExceeded) && code != ErrCodeTimeout {
		err = fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first EngineError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return "", false
}
