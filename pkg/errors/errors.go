package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeParse represents command parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeRegistry represents skill registry errors
	ErrorTypeRegistry ErrorType = "registry"
	// ErrorTypeSkill represents skill execution errors
	ErrorTypeSkill ErrorType = "skill"
	// ErrorTypeAdapter represents LLM adapter errors
	ErrorTypeAdapter ErrorType = "adapter"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Category returns the error's type. Promoted through embedding so typed
// errors answer category checks too.
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Parse Errors

// ErrAmbiguousCommand is returned when a command contains both a create and
// a delete verb. Refusing to guess is a safety policy, not a limitation.
var ErrAmbiguousCommand = NewBaseError(ErrorTypeParse, "ambiguous command: contains both create and delete", nil)

// ErrNotUnderstood is returned when no intent or target can be extracted
var ErrNotUnderstood = NewBaseError(ErrorTypeParse, "command not understood", nil)

// Registry Errors

// ErrUnknownIntent is returned when no skill is registered for an intent
type ErrUnknownIntent struct {
	*BaseError
	Intent string
}

func NewUnknownIntent(intent string) *ErrUnknownIntent {
	return &ErrUnknownIntent{
		BaseError: NewBaseError(ErrorTypeRegistry, fmt.Sprintf("unknown intent: %s", intent), nil),
		Intent:    intent,
	}
}

// ErrDuplicateIntent is returned when an intent name is registered twice
type ErrDuplicateIntent struct {
	*BaseError
	Intent string
}

func NewDuplicateIntent(intent string) *ErrDuplicateIntent {
	return &ErrDuplicateIntent{
		BaseError: NewBaseError(ErrorTypeRegistry, fmt.Sprintf("intent already registered: %s", intent), nil),
		Intent:    intent,
	}
}

// ErrPermissionDenied is returned when a skill requires permissions the
// caller was not granted
type ErrPermissionDenied struct {
	*BaseError
	Intent   string
	Required []string
}

func NewPermissionDenied(intent string, required []string) *ErrPermissionDenied {
	return &ErrPermissionDenied{
		BaseError: NewBaseError(ErrorTypeRegistry, fmt.Sprintf("permission denied for intent '%s'", intent), nil),
		Intent:    intent,
		Required:  required,
	}
}

// Skill Errors

// ErrNotFound is returned when a file or folder does not exist
type ErrNotFound struct {
	*BaseError
	Path string
}

func NewNotFound(path string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeSkill, fmt.Sprintf("not found: %s", path), nil),
		Path:      path,
	}
}

// ErrAlreadyExists is returned when a file or folder already exists
type ErrAlreadyExists struct {
	*BaseError
	Path string
}

func NewAlreadyExists(path string) *ErrAlreadyExists {
	return &ErrAlreadyExists{
		BaseError: NewBaseError(ErrorTypeSkill, fmt.Sprintf("already exists: %s", path), nil),
		Path:      path,
	}
}

// ErrPathNotWritable is returned when the host denies a write
type ErrPathNotWritable struct {
	*BaseError
	Path string
}

func NewPathNotWritable(path string, err error) *ErrPathNotWritable {
	return &ErrPathNotWritable{
		BaseError: NewBaseError(ErrorTypeSkill, fmt.Sprintf("path not writable: %s", path), err),
		Path:      path,
	}
}

// Adapter Errors

// ErrAdapterUnavailable is returned when the external LLM CLI is not on the
// host. Callers fall back to the regex parser; this never reaches the user.
var ErrAdapterUnavailable = NewBaseError(ErrorTypeAdapter, "LLM adapter unavailable", nil)

// ErrAdapterFailed is returned when the adapter ran but produced unusable output
type ErrAdapterFailed struct {
	*BaseError
	Reason string
}

func NewAdapterFailed(reason string, err error) *ErrAdapterFailed {
	return &ErrAdapterFailed{
		BaseError: NewBaseError(ErrorTypeAdapter, fmt.Sprintf("adapter failed: %s", reason), err),
		Reason:    reason,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var categorized interface{ Category() ErrorType }
	if errors.As(err, &categorized) {
		return categorized.Category() == errType
	}
	return false
}

// IsNotFound reports whether err is an ErrNotFound
func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

// IsAlreadyExists reports whether err is an ErrAlreadyExists
func IsAlreadyExists(err error) bool {
	var target *ErrAlreadyExists
	return errors.As(err, &target)
}

// IsUnknownIntent reports whether err is an ErrUnknownIntent
func IsUnknownIntent(err error) bool {
	var target *ErrUnknownIntent
	return errors.As(err, &target)
}

// IsAdapterUnavailable reports whether err means the LLM CLI is missing
func IsAdapterUnavailable(err error) bool {
	return errors.Is(err, ErrAdapterUnavailable)
}
