package healthlake

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/healthlake/types"
	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

func TestNormalizeAWSErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind toolerr.Kind
	}{
		{
			name: "resource not found",
			err:  &types.ResourceNotFoundException{Message: aws.String("datastore not found")},
			kind: toolerr.KindNotFound,
		},
		{
			name: "conflict",
			err:  &types.ConflictException{Message: aws.String("datastore is being deleted")},
			kind: toolerr.KindConflict,
		},
		{
			name: "throttled",
			err:  &types.ThrottlingException{Message: aws.String("rate exceeded")},
			kind: toolerr.KindThrottled,
		},
		{
			name: "access denied",
			err:  &types.AccessDeniedException{Message: aws.String("no permission")},
			kind: toolerr.KindAccessDenied,
		},
		{
			name: "validation",
			err:  &types.ValidationException{Message: aws.String("bad parameter")},
			kind: toolerr.KindValidation,
		},
		{
			name: "generic api error",
			err:  &smithy.GenericAPIError{Code: "InternalServerException", Message: "boom"},
			kind: toolerr.KindService,
		},
		{
			name: "plain error",
			err:  errors.New("dial tcp: connection refused"),
			kind: toolerr.KindService,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			norm := NormalizeAWSError("DescribeFHIRDatastore", tc.err)
			assert.Equal(t, tc.kind, norm.Kind)
			assert.Equal(t, "DescribeFHIRDatastore", norm.Operation)
			assert.NotEmpty(t, norm.Message)
		})
	}
}

func TestNormalizeAWSErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("operation failed: %w",
		&types.ThrottlingException{Message: aws.String("slow down")})

	norm := NormalizeAWSError("ListFHIRDatastores", wrapped)
	assert.Equal(t, toolerr.KindThrottled, norm.Kind)
	assert.Contains(t, norm.Message, "slow down")
}

func TestNormalizeAWSErrorPassesThroughToolErrors(t *testing.T) {
	orig := toolerr.Validationf("submitted_before must be an RFC3339 timestamp")
	norm := NormalizeAWSError("ListFHIRImportJobs", orig)
	assert.Same(t, orig, norm)
}

func TestNormalizeAWSErrorNil(t *testing.T) {
	assert.Nil(t, NormalizeAWSError("TagResource", nil))
}
