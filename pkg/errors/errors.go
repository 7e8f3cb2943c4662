package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Archive errors. Format errors are fatal for the archive operation:
	// the caller must not retry the file as this format.
	ErrArchiveFormat  ErrorCode = "ARCHIVE_FORMAT"
	ErrArchiveIndex   ErrorCode = "ARCHIVE_INDEX"
	ErrArchiveVersion ErrorCode = "ARCHIVE_VERSION"
	ErrEntryExtract   ErrorCode = "ENTRY_EXTRACT"

	// Mod errors
	ErrModNotFound ErrorCode = "MOD_NOT_FOUND"
	ErrModInvalid  ErrorCode = "MOD_INVALID"
	ErrModScan     ErrorCode = "MOD_SCAN"

	// Install errors
	ErrInstallCopy ErrorCode = "INSTALL_COPY"

	// Game detection errors
	ErrGameNotFound ErrorCode = "GAME_NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// RenmodError represents a structured error with code and details
type RenmodError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RenmodError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RenmodError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface; two RenmodErrors match when their
// codes are equal.
func (e *RenmodError) Is(target error) bool {
	var targetErr *RenmodError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RenmodError with the given code and message
func New(code ErrorCode, message string) *RenmodError {
	return &RenmodError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RenmodError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RenmodError {
	return &RenmodError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RenmodError
func Wrap(err error, code ErrorCode, message string) *RenmodError {
	if err == nil {
		return nil
	}
	return &RenmodError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RenmodError {
	if err == nil {
		return nil
	}
	return &RenmodError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RenmodError) WithDetail(key string, value interface{}) *RenmodError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from an error, returning ErrUnknown for
// errors that are not RenmodErrors.
func GetCode(err error) ErrorCode {
	var renmodErr *RenmodError
	if errors.As(err, &renmodErr) {
		return renmodErr.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsFormatError reports whether err is a fatal, non-retryable archive
// format error.
func IsFormatError(err error) bool {
	switch GetCode(err) {
	case ErrArchiveFormat, ErrArchiveIndex, ErrArchiveVersion:
		return true
	}
	return false
}
