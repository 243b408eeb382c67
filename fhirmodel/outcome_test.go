package fhirmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperationOutcome(t *testing.T) {
	body := []byte(`{
		"resourceType": "OperationOutcome",
		"issue": [
			{"severity": "error", "code": "not-found", "diagnostics": "Resource Patient/p1 not found"},
			{"severity": "warning", "code": "informational"}
		]
	}`)

	outcome := ParseOperationOutcome(body)
	require.NotNil(t, outcome)
	require.Len(t, outcome.Issue, 2)
	assert.Equal(t, "not-found", outcome.Issue[0].Code)
	assert.True(t, outcome.HasErrors())
	assert.Equal(t, "Resource Patient/p1 not found; informational", outcome.Summary())
}

func TestParseOperationOutcomeRejectsOtherResources(t *testing.T) {
	assert.Nil(t, ParseOperationOutcome([]byte(`{"resourceType":"Patient","id":"p1"}`)))
	assert.Nil(t, ParseOperationOutcome([]byte(`not json`)))
	assert.Nil(t, ParseOperationOutcome([]byte(`{"message":"plain error"}`)))
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	outcome := &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{Severity: IssueSeverityWarning, Code: "informational"},
			{Severity: IssueSeverityInformation, Code: "informational"},
		},
	}
	assert.False(t, outcome.HasErrors())
}
