package healthlake

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/healthlake/types"
	smithy "github.com/aws/smithy-go"

	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

// NormalizeAWSError converts a management-plane SDK error into the uniform
// tool error shape. The original AWS error code and message are preserved in
// the message; nothing is suppressed.
func NormalizeAWSError(operation string, err error) *toolerr.Error {
	if err == nil {
		return nil
	}

	// Already normalized (e.g. a validation error from parameter translation).
	var te *toolerr.Error
	if errors.As(err, &te) {
		return te
	}

	kind := toolerr.KindService
	var (
		notFound     *types.ResourceNotFoundException
		conflict     *types.ConflictException
		throttled    *types.ThrottlingException
		accessDenied *types.AccessDeniedException
		validation   *types.ValidationException
	)
	switch {
	case errors.As(err, &notFound):
		kind = toolerr.KindNotFound
	case errors.As(err, &conflict):
		kind = toolerr.KindConflict
	case errors.As(err, &throttled):
		kind = toolerr.KindThrottled
	case errors.As(err, &accessDenied):
		kind = toolerr.KindAccessDenied
	case errors.As(err, &validation):
		kind = toolerr.KindValidation
	}

	message := err.Error()
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
	}

	return &toolerr.Error{
		Kind:      kind,
		Message:   message,
		Operation: operation,
	}
}
