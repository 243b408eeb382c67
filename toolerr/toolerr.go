// Package toolerr defines the uniform error shape returned by every tool.
// AWS SDK faults, FHIR OperationOutcome bodies, and local validation failures
// all normalize into an Error before they reach the MCP transport.
package toolerr

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a tool error for the calling agent.
type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindPermissionDenied Kind = "permission_denied"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindThrottled        Kind = "throttled"
	KindAccessDenied     Kind = "access_denied"
	KindOperationOutcome Kind = "operation_outcome"
	KindService          Kind = "service_error"
)

// Issue mirrors a FHIR OperationOutcome issue entry. The original issue list
// is carried through unmodified so the agent can inspect server diagnostics.
type Issue struct {
	Severity    string   `json:"severity,omitempty"`
	Code        string   `json:"code,omitempty"`
	Diagnostics string   `json:"diagnostics,omitempty"`
	Expression  []string `json:"expression,omitempty"`
}

// Error is the single error shape surfaced to the agent.
type Error struct {
	Kind       Kind    `json:"error"`
	Message    string  `json:"message"`
	Operation  string  `json:"operation,omitempty"`
	StatusCode int     `json:"status_code,omitempty"`
	Issues     []Issue `json:"issues,omitempty"`
}

func (e *Error) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Operation, e.Message, e.Kind)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

// JSON renders the error as the tool result payload.
func (e *Error) JSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"error":%q,"message":%q}`, KindService, e.Message)
	}
	return string(b)
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validationf creates a local validation error. Tools return these before any
// network call is issued.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// MissingParam creates a validation error for an absent required parameter.
func MissingParam(name string) *Error {
	return Validationf("required parameter %q is missing", name)
}

// ReadOnly creates the permission error returned when the read-only gate
// rejects a mutating tool.
func ReadOnly(tool string) *Error {
	return &Error{
		Kind:      KindPermissionDenied,
		Message:   "server is running in read-only mode; mutating tools are disabled",
		Operation: tool,
	}
}
