package errors

import (
	stderrors "errors"
	"fmt"
)

// Code identifies the outcome an execution context was terminated with.
// Codes are stable; callers compare them, never the message text.
type Code string

const (
	// CodeNone means the context has not been terminated.
	CodeNone Code = ""

	// CodeUpdateNotApplicable is the benign outcome for a package that is
	// already current or has no installer usable for an upgrade.
	CodeUpdateNotApplicable Code = "UPDATE_NOT_APPLICABLE"

	// CodeUpdateAllHasFailure is handed to the batch installer as the outcome to
	// use when any member of an update-all batch fails.
	CodeUpdateAllHasFailure Code = "UPDATE_ALL_HAS_FAILURE"

	CodeNoInstalledPackage    Code = "NO_INSTALLED_PACKAGE"
	CodeNoPackageFound        Code = "NO_PACKAGE_FOUND"
	CodeMultiplePackagesFound Code = "MULTIPLE_PACKAGES_FOUND"
	CodeManifestUnavailable   Code = "MANIFEST_UNAVAILABLE"
	CodeInstallFailed         Code = "INSTALL_FAILED"
	CodePolicyFailed          Code = "POLICY_FAILED"
	CodeCancelled             Code = "CANCELLED"
	CodeInternal              Code = "INTERNAL"
)

// CodedError is an error carrying an outcome Code.
type CodedError struct {
	Code    Code
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap implements the errors.Unwrap interface.
func (e *CodedError) Unwrap() error {
	return e.Wrapped
}

// Is matches any *CodedError with the same code.
func (e *CodedError) Is(target error) bool {
	var t *CodedError
	if stderrors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a CodedError with the given code and message.
func New(code Code, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// Newf creates a CodedError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCode wraps err with a code. A nil err still produces a coded error.
func WithCode(err error, code Code, message string) *CodedError {
	return &CodedError{Code: code, Message: message, Wrapped: err}
}

// CodeOf returns the outermost code found in err's chain, CodeNone for nil,
// and CodeInternal for an error without a code.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var coded *CodedError
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Is forwards to the standard library so callers can keep a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join forwards to the standard library.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
