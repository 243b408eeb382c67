package fhirclient

import (
	"fmt"
	"net/http"

	"github.com/lakefhir/healthlake-mcp-server/fhirmodel"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

// normalizeHTTPError maps a FHIR REST error response to the uniform tool
// error shape. When the body carries an OperationOutcome its issues are
// attached verbatim so the caller sees the server's own diagnostics.
func normalizeHTTPError(operation string, status int, body []byte) *toolerr.Error {
	kind := kindForStatus(status)
	message := fmt.Sprintf("FHIR request failed with status %d", status)

	var issues []toolerr.Issue
	if outcome := fhirmodel.ParseOperationOutcome(body); outcome != nil {
		if summary := outcome.Summary(); summary != "" {
			message = summary
		}
		for _, is := range outcome.Issue {
			issues = append(issues, toolerr.Issue{
				Severity:    is.Severity,
				Code:        is.Code,
				Diagnostics: is.Diagnostics,
				Expression:  is.Expression,
			})
		}
		if kind == toolerr.KindService {
			kind = toolerr.KindOperationOutcome
		}
	}

	return &toolerr.Error{
		Kind:       kind,
		Message:    message,
		Operation:  operation,
		StatusCode: status,
		Issues:     issues,
	}
}

func kindForStatus(status int) toolerr.Kind {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return toolerr.KindNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return toolerr.KindConflict
	case http.StatusTooManyRequests:
		return toolerr.KindThrottled
	case http.StatusUnauthorized, http.StatusForbidden:
		return toolerr.KindAccessDenied
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return toolerr.KindOperationOutcome
	default:
		return toolerr.KindService
	}
}
