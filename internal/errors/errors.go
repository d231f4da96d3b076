package errors

import (
	"errors"
	"fmt"
)

// Error code constants
const (
	CodeExtractFailed   = "EXTRACT_FAILED"
	CodeUnknownCode     = "UNKNOWN_CODE"
	CodeZipInvalid      = "ZIP_INVALID"
	CodeZipBombDetected = "ZIP_BOMB_DETECTED"
	CodePathTraversal   = "PATH_TRAVERSAL"
	CodeLocked          = "LOCKED"
	CodeInvalidConfig   = "INVALID_CONFIG"
)

// Error represents an unsheet error with a code and message.
// It implements the error interface and supports error wrapping.
type Error struct {
	wrapped error
	Code    string
	Message string
}

// Error returns the error message, implementing the error interface.
func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a new unsheet error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new unsheet error that wraps an underlying error.
func Wrap(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		wrapped: err,
	}
}

// Code extracts the outermost error code from an error.
// Returns an empty string if the error is not an unsheet error.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var unsheetErr *Error
	if errors.As(err, &unsheetErr) {
		return unsheetErr.Code
	}
	return ""
}

// Is checks if the outermost unsheet error has a specific code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// Has reports whether any unsheet error in the chain carries code.
func Has(err error, code string) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// As is errors.As, re-exported so callers need only one errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Convenience constructors for each error code

// ExtractFailed creates an EXTRACT_FAILED error for archive wrapping the cause.
func ExtractFailed(archive string, err error) *Error {
	return Wrap(CodeExtractFailed, fmt.Sprintf("failed to extract %q", archive), err)
}

// UnknownCode creates an UNKNOWN_CODE error.
func UnknownCode(code string) *Error {
	return New(CodeUnknownCode, fmt.Sprintf("sheet code %q is not in the catalog", code))
}

// ZipInvalid creates a ZIP_INVALID error.
func ZipInvalid(path string, err error) *Error {
	return Wrap(CodeZipInvalid, fmt.Sprintf("file %q is not a valid zip archive", path), err)
}

// ZipBombDetected creates a ZIP_BOMB_DETECTED error.
func ZipBombDetected(reason string) *Error {
	return New(CodeZipBombDetected, fmt.Sprintf("zip bomb detected: %s", reason))
}

// PathTraversal creates a PATH_TRAVERSAL error.
func PathTraversal(err error) *Error {
	return Wrap(CodePathTraversal, "archive entry attempts to escape destination", err)
}

// Locked creates a LOCKED error.
func Locked(dir string) *Error {
	return New(CodeLocked, fmt.Sprintf("directory %q is locked by another run", dir))
}

// InvalidConfig creates an INVALID_CONFIG error.
func InvalidConfig(reason string) *Error {
	return New(CodeInvalidConfig, fmt.Sprintf("invalid configuration: %s", reason))
}
