// Package fhirmodel holds the small slice of the FHIR R4 data model the
// adapter needs: OperationOutcome parsing, resource skeletons, and local
// structural validation of resources before they are sent to a datastore.
package fhirmodel

import (
	"encoding/json"
	"strings"
)

// OperationOutcome severity levels per FHIR R4.
const (
	IssueSeverityFatal       = "fatal"
	IssueSeverityError       = "error"
	IssueSeverityWarning     = "warning"
	IssueSeverityInformation = "information"
)

// OperationOutcome issue type codes the adapter emits locally.
const (
	IssueTypeInvalid   = "invalid"
	IssueTypeRequired  = "required"
	IssueTypeStructure = "structure"
	IssueTypeNotFound  = "not-found"
)

// OperationOutcomeIssue is one issue entry in an OperationOutcome.
type OperationOutcomeIssue struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Diagnostics string   `json:"diagnostics,omitempty"`
	Expression  []string `json:"expression,omitempty"`
}

// OperationOutcome is FHIR's structured error/diagnostic response body.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

// HasErrors reports whether the outcome contains error or fatal issues.
func (o *OperationOutcome) HasErrors() bool {
	for _, issue := range o.Issue {
		if issue.Severity == IssueSeverityError || issue.Severity == IssueSeverityFatal {
			return true
		}
	}
	return false
}

// Summary joins issue diagnostics into a single human-readable message.
func (o *OperationOutcome) Summary() string {
	var parts []string
	for _, issue := range o.Issue {
		if issue.Diagnostics != "" {
			parts = append(parts, issue.Diagnostics)
		} else if issue.Code != "" {
			parts = append(parts, issue.Code)
		}
	}
	return strings.Join(parts, "; ")
}

// ParseOperationOutcome decodes an OperationOutcome from an HTTP error body.
// Returns nil if the body is not an OperationOutcome resource.
func ParseOperationOutcome(body []byte) *OperationOutcome {
	var outcome OperationOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil
	}
	if outcome.ResourceType != "OperationOutcome" {
		return nil
	}
	return &outcome
}
