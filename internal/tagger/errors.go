package tagger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/databricks/databricks-sdk-go/apierr"
)

// ErrNotFound is returned when an identifier matches neither a resource ID
// nor a resource name.
var ErrNotFound = errors.New("resource not found")

// Error category constants classify tagging failures for diagnostics.
const (
	ErrCategoryPermission    = "permission"
	ErrCategoryConfiguration = "configuration"
	ErrCategoryResource      = "resource"
	ErrCategoryTimeout       = "timeout"
	ErrCategoryNetwork       = "network"
)

// TagError is a structured error that carries the failed resource, the
// failing operation and a remediation hint.
type TagError struct {
	// Category classifies the failure (e.g. "permission", "network").
	Category string
	// Kind is the resource kind that failed.
	Kind Kind
	// Identifier is the name or ID as read from the input list.
	Identifier string
	// Operation is the call that failed (e.g. "get", "list", "edit").
	Operation string
	// Message is the primary error description.
	Message string
	// Remediation is a human-readable hint on how to fix the issue.
	Remediation string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface with a diagnostic-rich message.
func (e *TagError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %q failed", e.Operation, e.Kind, e.Identifier)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Remediation != "" {
		fmt.Fprintf(&b, " [hint: %s]", e.Remediation)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TagError) Unwrap() error {
	return e.Cause
}

// newTagError creates a TagError with automatic classification of cause.
func newTagError(operation string, kind Kind, identifier string, cause error) *TagError {
	category, remediation := classifyError(cause)
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &TagError{
		Category:    category,
		Kind:        kind,
		Identifier:  identifier,
		Operation:   operation,
		Message:     msg,
		Remediation: remediation,
		Cause:       cause,
	}
}

// AsTagError returns the TagError if err is (or wraps) one.
func AsTagError(err error) *TagError {
	var te *TagError
	if errors.As(err, &te) {
		return te
	}
	return nil
}

// classifyError maps a Databricks API error to a category and remediation
// hint. Typed API errors are checked first; anything else falls back to
// matching on the message text.
func classifyError(err error) (category, remediation string) {
	switch {
	case err == nil:
		return ErrCategoryResource, ""
	case errors.Is(err, ErrNotFound):
		return ErrCategoryResource, hintCheckIdentifier
	case errors.Is(err, apierr.ErrPermissionDenied), errors.Is(err, apierr.ErrUnauthenticated):
		return ErrCategoryPermission, hintCheckPermission
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.Is(err, apierr.ErrDeadlineExceeded):
		return ErrCategoryTimeout, hintRetryOrTimeout
	case errors.Is(err, apierr.ErrInvalidParameterValue):
		return ErrCategoryConfiguration, hintCheckSpec
	}
	return classifyErrorMessage(err.Error())
}

// classifyErrorMessage determines category and remediation from an error string.
func classifyErrorMessage(msg string) (category, remediation string) {
	lower := strings.ToLower(msg)

	if containsAny(lower, permissionKeywords) {
		return ErrCategoryPermission, hintCheckPermission
	}
	if containsAny(lower, networkKeywords) {
		return ErrCategoryNetwork, hintCheckNetwork
	}
	if containsAny(lower, timeoutKeywords) {
		return ErrCategoryTimeout, hintRetryOrTimeout
	}
	if containsAny(lower, configKeywords) {
		return ErrCategoryConfiguration, hintCheckSpec
	}
	return ErrCategoryResource, ""
}

// Keyword groups for error classification.
var (
	permissionKeywords = []string{
		"permission_denied", "permission denied", "unauthorized",
		"not authorized", "forbidden", "invalid access token",
	}
	networkKeywords = []string{
		"connection refused", "no such host", "dial tcp",
		"tls handshake", "i/o timeout",
	}
	timeoutKeywords = []string{
		"deadline exceeded", "context canceled", "timed out",
	}
	configKeywords = []string{
		"invalid_parameter_value", "invalid parameter", "malformed",
		"validation", "cannot be edited",
	}
)

// Remediation hint constants.
const (
	hintCheckIdentifier = "check the name or ID in the input list; names must match exactly"
	hintCheckPermission = "verify the token or profile has CAN_MANAGE on the resource"
	hintCheckNetwork    = "verify the workspace host is correct and reachable"
	hintRetryOrTimeout  = "the workspace did not answer in time; retry after a short wait"
	hintCheckSpec       = "the resource spec was rejected; inspect it in the workspace UI"
)

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DiagnosticSummary returns a multi-line diagnostic string for the failed
// outcomes of a run, suitable for display once the run is over.
func DiagnosticSummary(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tagging completed with %d error(s):\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}
