// Package errors provides structured error types for the debug bridge.
// These errors carry remediation hints so the surrounding tooling can
// show an actionable message instead of a bare failure.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a category of error for programmatic handling
type ErrorCode string

const (
	// Capability errors
	CodeServiceNotInstalled ErrorCode = "SERVICE_NOT_INSTALLED"
	CodeVersionBelowMinimum ErrorCode = "VERSION_BELOW_MINIMUM"
	CodeSEPUnsupported      ErrorCode = "SEP_UNSUPPORTED"

	// Certificate errors
	CodeCertificateIssue ErrorCode = "CERTIFICATE_ISSUE"

	// Resolution errors
	CodeObjectNotFound ErrorCode = "OBJECT_NOT_FOUND"

	// User interaction
	CodeUserCancelled ErrorCode = "USER_CANCELLED"

	// Launch errors
	CodeLaunchFailed ErrorCode = "LAUNCH_FAILED"

	// Parameter errors (tool surface)
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// Remote I/O
	CodeRemoteFailure ErrorCode = "REMOTE_FAILURE"
)

// Kind groups codes into the handling categories the session manager
// switches on.
type Kind string

const (
	KindCapabilityMissing Kind = "capability-missing"
	KindCertificateIssue  Kind = "certificate-issue"
	KindResolutionFailure Kind = "resolution-failure"
	KindUserCancelled     Kind = "user-cancelled"
	KindLaunchFailure     Kind = "launch-failure"
	KindRemoteFailure     Kind = "remote-failure"
	KindParameter         Kind = "parameter"
)

var codeKinds = map[ErrorCode]Kind{
	CodeServiceNotInstalled: KindCapabilityMissing,
	CodeVersionBelowMinimum: KindCapabilityMissing,
	CodeSEPUnsupported:      KindCapabilityMissing,
	CodeCertificateIssue:    KindCertificateIssue,
	CodeObjectNotFound:      KindResolutionFailure,
	CodeUserCancelled:       KindUserCancelled,
	CodeLaunchFailed:        KindLaunchFailure,
	CodeMissingParameter:    KindParameter,
	CodeInvalidParameter:    KindParameter,
	CodeRemoteFailure:       KindRemoteFailure,
}

// BridgeError is a structured error that includes a machine-readable
// code and a remediation hint.
type BridgeError struct {
	// Code is a machine-readable error category
	Code ErrorCode `json:"code"`

	// Message is a human-readable description of what went wrong
	Message string `json:"message"`

	// Hint provides actionable guidance on how to fix the error
	Hint string `json:"hint,omitempty"`

	// Details contains additional context (e.g., the offending value)
	Details map[string]interface{} `json:"details,omitempty"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Hint != "" {
		sb.WriteString(" | Hint: ")
		sb.WriteString(e.Hint)
	}

	return sb.String()
}

// Unwrap returns the underlying error for error chaining
func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// Kind returns the handling category for this error.
func (e *BridgeError) Kind() Kind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindRemoteFailure
}

// WithDetails adds details to the error
func (e *BridgeError) WithDetails(key string, value interface{}) *BridgeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *BridgeError) WithCause(err error) *BridgeError {
	e.Cause = err
	return e
}

// --- Capability errors ---

// ServiceNotInstalled creates an error for an absent debug service.
func ServiceNotInstalled() *BridgeError {
	return &BridgeError{
		Code:    CodeServiceNotInstalled,
		Message: "the debug service is not installed on this system",
		Hint:    "Install the IBM i debug service PTF, then reconnect.",
	}
}

// VersionBelowMinimum creates an error for an outdated debug service.
func VersionBelowMinimum(version string, minimum string) *BridgeError {
	return &BridgeError{
		Code:    CodeVersionBelowMinimum,
		Message: fmt.Sprintf("debug service version %s is below the supported minimum %s", version, minimum),
		Hint:    "Apply the latest debug service PTF to update the installed version.",
		Details: map[string]interface{}{
			"version": version,
			"minimum": minimum,
		},
	}
}

// SEPUnsupported creates an error for SEP requests against a service
// that predates service entry point support.
func SEPUnsupported(version string) *BridgeError {
	return &BridgeError{
		Code:    CodeSEPUnsupported,
		Message: fmt.Sprintf("service entry points require debug service 2.0 or later, but version %s is installed", version),
		Hint:    "Update the debug service, or start a batch debug session instead.",
		Details: map[string]interface{}{
			"version": version,
		},
	}
}

// --- Certificate errors ---

// CertificateIssue creates an error for certificate provisioning failures.
func CertificateIssue(stage string, err error) *BridgeError {
	return &BridgeError{
		Code:    CodeCertificateIssue,
		Message: fmt.Sprintf("debug service certificate %s failed: %v", stage, err),
		Hint:    "Run the debug service setup to regenerate the service certificate, then retry the launch.",
		Cause:   err,
		Details: map[string]interface{}{
			"stage": stage,
		},
	}
}

// --- Resolution errors ---

// ObjectNotFound creates an error for an unresolvable target object.
func ObjectNotFound(library, object string) *BridgeError {
	return &BridgeError{
		Code:    CodeObjectNotFound,
		Message: fmt.Sprintf("no program or service program named %s/%s was found", library, object),
		Hint:    "Check that the object exists and is a *PGM or *SRVPGM, and that the library name is spelled correctly.",
		Details: map[string]interface{}{
			"library": library,
			"object":  object,
		},
	}
}

// --- User interaction ---

// UserCancelled marks a user-driven abort. Callers abort silently.
func UserCancelled(what string) *BridgeError {
	return &BridgeError{
		Code:    CodeUserCancelled,
		Message: fmt.Sprintf("%s cancelled", what),
	}
}

// IsUserCancelled reports whether err is a user-driven cancel.
func IsUserCancelled(err error) bool {
	var be *BridgeError
	return stderrors.As(err, &be) && be.Code == CodeUserCancelled
}

// --- Launch errors ---

// LaunchFailed creates an error for a delegate launch failure.
func LaunchFailed(library, object string, err error) *BridgeError {
	return &BridgeError{
		Code:    CodeLaunchFailed,
		Message: fmt.Sprintf("failed to start debug session for %s/%s: %v", library, object, err),
		Hint:    "Check the debug service job log on the remote system; the password may also be incorrect.",
		Cause:   err,
		Details: map[string]interface{}{
			"library": library,
			"object":  object,
		},
	}
}

// --- Parameter errors ---

// MissingParameter creates an error for missing required parameters
func MissingParameter(paramName, description string) *BridgeError {
	return &BridgeError{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("required parameter '%s' is missing", paramName),
		Hint:    description,
		Details: map[string]interface{}{
			"parameter": paramName,
		},
	}
}

// InvalidParameter creates an error for invalid parameter values
func InvalidParameter(paramName string, value interface{}, expected string) *BridgeError {
	return &BridgeError{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid value for parameter '%s': %v", paramName, value),
		Hint:    fmt.Sprintf("Expected: %s", expected),
		Details: map[string]interface{}{
			"parameter": paramName,
			"value":     value,
			"expected":  expected,
		},
	}
}

// --- Remote I/O ---

// RemoteFailure wraps a failed remote call with the operation name.
func RemoteFailure(operation string, err error) *BridgeError {
	return &BridgeError{
		Code:    CodeRemoteFailure,
		Message: fmt.Sprintf("remote %s failed: %v", operation, err),
		Cause:   err,
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// KindOf maps any error to its handling category. Errors that are not
// BridgeErrors are treated as remote failures.
func KindOf(err error) Kind {
	var be *BridgeError
	if stderrors.As(err, &be) {
		return be.Kind()
	}
	return KindRemoteFailure
}

// FromError returns err as a BridgeError, wrapping it when needed.
func FromError(err error) *BridgeError {
	var be *BridgeError
	if stderrors.As(err, &be) {
		return be
	}
	return &BridgeError{
		Code:    CodeRemoteFailure,
		Message: err.Error(),
		Cause:   err,
	}
}
