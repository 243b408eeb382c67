package tools

import (
	"context"
	"encoding/json"
	"testing"

	awshl "github.com/aws/aws-sdk-go-v2/service/healthlake"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakefhir/healthlake-mcp-server/fhirclient"
	"github.com/lakefhir/healthlake-mcp-server/healthlake"
)

// fakeMgmt counts management-plane calls so gate tests can assert that a
// blocked tool produced zero traffic.
type fakeMgmt struct {
	calls int
}

func (f *fakeMgmt) CreateDatastore(ctx context.Context, p healthlake.CreateDatastoreParams) (*awshl.CreateFHIRDatastoreOutput, error) {
	f.calls++
	return &awshl.CreateFHIRDatastoreOutput{}, nil
}

func (f *fakeMgmt) DeleteDatastore(ctx context.Context, datastoreID string) (*awshl.DeleteFHIRDatastoreOutput, error) {
	f.calls++
	return &awshl.DeleteFHIRDatastoreOutput{}, nil
}

func (f *fakeMgmt) DescribeDatastore(ctx context.Context, datastoreID string) (*awshl.DescribeFHIRDatastoreOutput, error) {
	f.calls++
	return &awshl.DescribeFHIRDatastoreOutput{}, nil
}

func (f *fakeMgmt) ListDatastores(ctx context.Context, p healthlake.ListDatastoresParams) (*awshl.ListFHIRDatastoresOutput, error) {
	f.calls++
	return &awshl.ListFHIRDatastoresOutput{}, nil
}

func (f *fakeMgmt) StartImportJob(ctx context.Context, p healthlake.StartImportJobParams) (*awshl.StartFHIRImportJobOutput, error) {
	f.calls++
	return &awshl.StartFHIRImportJobOutput{}, nil
}

func (f *fakeMgmt) StartExportJob(ctx context.Context, p healthlake.StartExportJobParams) (*awshl.StartFHIRExportJobOutput, error) {
	f.calls++
	return &awshl.StartFHIRExportJobOutput{}, nil
}

func (f *fakeMgmt) DescribeImportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRImportJobOutput, error) {
	f.calls++
	return &awshl.DescribeFHIRImportJobOutput{}, nil
}

func (f *fakeMgmt) DescribeExportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRExportJobOutput, error) {
	f.calls++
	return &awshl.DescribeFHIRExportJobOutput{}, nil
}

func (f *fakeMgmt) ListImportJobs(ctx context.Context, p healthlake.ListJobsParams) (*awshl.ListFHIRImportJobsOutput, error) {
	f.calls++
	return &awshl.ListFHIRImportJobsOutput{}, nil
}

func (f *fakeMgmt) ListExportJobs(ctx context.Context, p healthlake.ListJobsParams) (*awshl.ListFHIRExportJobsOutput, error) {
	f.calls++
	return &awshl.ListFHIRExportJobsOutput{}, nil
}

func (f *fakeMgmt) TagResource(ctx context.Context, resourceARN string, tags []healthlake.Tag) (*awshl.TagResourceOutput, error) {
	f.calls++
	return &awshl.TagResourceOutput{}, nil
}

func (f *fakeMgmt) UntagResource(ctx context.Context, resourceARN string, tagKeys []string) (*awshl.UntagResourceOutput, error) {
	f.calls++
	return &awshl.UntagResourceOutput{}, nil
}

func (f *fakeMgmt) ListTagsForResource(ctx context.Context, resourceARN string) (*awshl.ListTagsForResourceOutput, error) {
	f.calls++
	return &awshl.ListTagsForResourceOutput{}, nil
}

// fakeFHIR counts data-plane calls and records the last request per
// operation.
type fakeFHIR struct {
	calls      int
	lastRead   fhirclient.ReadRequest
	lastCreate fhirclient.CreateRequest
	lastSearch fhirclient.SearchRequest
}

func (f *fakeFHIR) Read(ctx context.Context, r fhirclient.ReadRequest) (map[string]any, error) {
	f.calls++
	f.lastRead = r
	return map[string]any{"resourceType": r.ResourceType, "id": r.ResourceID}, nil
}

func (f *fakeFHIR) Create(ctx context.Context, r fhirclient.CreateRequest) (map[string]any, error) {
	f.calls++
	f.lastCreate = r
	return map[string]any{"resourceType": r.ResourceType, "id": "new-1"}, nil
}

func (f *fakeFHIR) Update(ctx context.Context, r fhirclient.UpdateRequest) (map[string]any, error) {
	f.calls++
	return map[string]any{"resourceType": r.ResourceType, "id": r.ResourceID}, nil
}

func (f *fakeFHIR) Patch(ctx context.Context, r fhirclient.PatchRequest) (map[string]any, error) {
	f.calls++
	return map[string]any{"resourceType": r.ResourceType, "id": r.ResourceID}, nil
}

func (f *fakeFHIR) Delete(ctx context.Context, r fhirclient.DeleteRequest) (map[string]any, error) {
	f.calls++
	return map[string]any{"status": "success"}, nil
}

func (f *fakeFHIR) Search(ctx context.Context, r fhirclient.SearchRequest) (map[string]any, error) {
	f.calls++
	f.lastSearch = r
	return map[string]any{"resourceType": "Bundle", "type": "searchset"}, nil
}

func (f *fakeFHIR) SearchCompartment(ctx context.Context, r fhirclient.CompartmentSearchRequest) (map[string]any, error) {
	f.calls++
	return map[string]any{"resourceType": "Bundle", "type": "searchset"}, nil
}

func (f *fakeFHIR) ProcessBundle(ctx context.Context, r fhirclient.BundleRequest) (map[string]any, error) {
	f.calls++
	return map[string]any{"resourceType": "Bundle", "type": "transaction-response"}, nil
}

func newTestRegistry(readOnly bool) (*Registry, *fakeMgmt, *fakeFHIR) {
	mgmt := &fakeMgmt{}
	fhir := &fakeFHIR{}
	return NewRegistry(mgmt, fhir, readOnly, zap.NewNop()), mgmt, fhir
}

// invoke runs one tool through the full wrapper, gate included.
func invoke(t *testing.T, r *Registry, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	for _, d := range r.definitions() {
		if d.tool.Name == name {
			req := mcp.CallToolRequest{}
			req.Params.Name = name
			req.Params.Arguments = args
			result, err := r.wrap(name, d.handler)(context.Background(), req)
			require.NoError(t, err)
			return result
		}
	}
	t.Fatalf("tool %q is not registered", name)
	return nil
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &m))
	return m
}

func TestRegistryDefinesEveryTool(t *testing.T) {
	r, _, _ := newTestRegistry(false)
	defs := r.Definitions()
	assert.Len(t, defs, 24)

	seen := map[string]bool{}
	for _, d := range defs {
		assert.False(t, seen[d.Name], "duplicate tool %q", d.Name)
		seen[d.Name] = true
		assert.NotEmpty(t, d.Description, "tool %q has no description", d.Name)
	}
	for name := range mutatingTools {
		assert.True(t, seen[name], "mutating tool %q is not registered", name)
	}
}

func TestReadOnlyGateBlocksEveryMutatingTool(t *testing.T) {
	r, mgmt, fhir := newTestRegistry(true)

	// Arguments are complete and valid; the gate must still win, and it
	// must do so without any service call.
	args := map[string]map[string]any{
		"create_datastore": {"datastore_type_version": "R4"},
		"delete_datastore": {"datastore_id": "ds-1"},
		"start_fhir_import_job": {
			"datastore_id":           "ds-1",
			"data_access_role_arn":   "arn:aws:iam::123456789012:role/import",
			"input_data_config":      map[string]any{"s3_uri": "s3://bucket/in"},
			"job_output_data_config": map[string]any{"s3_uri": "s3://bucket/out"},
		},
		"start_fhir_export_job": {
			"datastore_id":         "ds-1",
			"data_access_role_arn": "arn:aws:iam::123456789012:role/export",
			"output_data_config":   map[string]any{"s3_uri": "s3://bucket/out"},
		},
		"tag_resource": {
			"resource_arn": "arn:aws:healthlake:us-west-2:123456789012:datastore/fhir/ds-1",
			"tags":         []any{map[string]any{"key": "env", "value": "dev"}},
		},
		"untag_resource": {
			"resource_arn": "arn:aws:healthlake:us-west-2:123456789012:datastore/fhir/ds-1",
			"tag_keys":     []any{"env"},
		},
		"create_fhir_resource": {
			"datastore_id":  "ds-1",
			"resource_type": "Patient",
			"resource_data": map[string]any{"resourceType": "Patient"},
		},
		"update_fhir_resource": {
			"datastore_id":  "ds-1",
			"resource_type": "Patient",
			"resource_id":   "pat-1",
			"resource_data": map[string]any{"resourceType": "Patient"},
		},
		"patch_fhir_resource": {
			"datastore_id":     "ds-1",
			"resource_type":    "Patient",
			"resource_id":      "pat-1",
			"patch_operations": []any{map[string]any{"op": "replace", "path": "/active", "value": false}},
		},
		"delete_fhir_resource": {
			"datastore_id":  "ds-1",
			"resource_type": "Patient",
			"resource_id":   "pat-1",
		},
		"process_fhir_bundle": {
			"datastore_id": "ds-1",
			"bundle":       map[string]any{"resourceType": "Bundle", "type": "transaction"},
		},
	}
	require.Len(t, args, len(mutatingTools))

	for name, a := range args {
		result := invoke(t, r, name, a)
		assert.True(t, result.IsError, "tool %q was not blocked", name)
		payload := decodeResult(t, result)
		assert.Equal(t, "permission_denied", payload["error"], "tool %q", name)
	}
	assert.Zero(t, mgmt.calls, "management plane was called in read-only mode")
	assert.Zero(t, fhir.calls, "data plane was called in read-only mode")
}

func TestReadOnlyModeStillAllowsReads(t *testing.T) {
	r, mgmt, fhir := newTestRegistry(true)

	result := invoke(t, r, "describe_datastore", map[string]any{"datastore_id": "ds-1"})
	assert.False(t, result.IsError)
	assert.Equal(t, 1, mgmt.calls)

	result = invoke(t, r, "read_fhir_resource", map[string]any{
		"datastore_id":  "ds-1",
		"resource_type": "Patient",
		"resource_id":   "pat-1",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, 1, fhir.calls)

	result = invoke(t, r, "get_resource_template", map[string]any{"resource_type": "Patient"})
	assert.False(t, result.IsError)
}

func TestMissingRequiredParamFailsBeforeAnyCall(t *testing.T) {
	r, mgmt, fhir := newTestRegistry(false)

	tests := []struct {
		tool string
		args map[string]any
	}{
		{"describe_datastore", map[string]any{}},
		{"delete_datastore", map[string]any{"datastore_id": ""}},
		{"describe_fhir_import_job", map[string]any{"datastore_id": "ds-1"}},
		{"start_fhir_import_job", map[string]any{
			"datastore_id":         "ds-1",
			"data_access_role_arn": "arn:aws:iam::123456789012:role/import",
		}},
		{"read_fhir_resource", map[string]any{"datastore_id": "ds-1", "resource_type": "Patient"}},
		{"create_fhir_resource", map[string]any{"datastore_id": "ds-1", "resource_type": "Patient"}},
		{"search_fhir_resources", map[string]any{"datastore_id": "ds-1"}},
		{"tag_resource", map[string]any{"resource_arn": "arn:x", "tags": []any{}}},
	}

	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			result := invoke(t, r, tc.tool, tc.args)
			assert.True(t, result.IsError)
			payload := decodeResult(t, result)
			assert.Equal(t, "validation_error", payload["error"])
		})
	}
	assert.Zero(t, mgmt.calls)
	assert.Zero(t, fhir.calls)
}

func TestReadDispatchesWithVersion(t *testing.T) {
	r, _, fhir := newTestRegistry(false)

	result := invoke(t, r, "read_fhir_resource", map[string]any{
		"datastore_id":  "ds-1",
		"resource_type": "Patient",
		"resource_id":   "pat-1",
		"version_id":    "3",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "3", fhir.lastRead.VersionID)
	assert.Equal(t, "Patient", fhir.lastRead.ResourceType)
}

func TestCreateValidatesLocallyBeforeDispatch(t *testing.T) {
	r, _, fhir := newTestRegistry(false)

	// Observation without status and code must fail locally.
	result := invoke(t, r, "create_fhir_resource", map[string]any{
		"datastore_id":  "ds-1",
		"resource_type": "Observation",
		"resource_data": map[string]any{"resourceType": "Observation"},
	})
	assert.True(t, result.IsError)
	payload := decodeResult(t, result)
	assert.Equal(t, "validation_error", payload["error"])
	assert.NotEmpty(t, payload["issues"])
	assert.Zero(t, fhir.calls)

	// The same resource with required fields passes through.
	result = invoke(t, r, "create_fhir_resource", map[string]any{
		"datastore_id":  "ds-1",
		"resource_type": "Observation",
		"resource_data": map[string]any{
			"resourceType": "Observation",
			"status":       "final",
			"code":         map[string]any{"coding": []any{}},
		},
		"if_none_exist": "code=http://loinc.org|8867-4",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, 1, fhir.calls)
	assert.Equal(t, "code=http://loinc.org|8867-4", fhir.lastCreate.IfNoneExist)
}

func TestSearchCoercesNumericParams(t *testing.T) {
	r, _, fhir := newTestRegistry(false)

	result := invoke(t, r, "search_fhir_resources", map[string]any{
		"datastore_id":  "ds-1",
		"resource_type": "Observation",
		"query_parameters": map[string]any{
			"patient": "Patient/pat-1",
			"_count":  float64(10),
		},
		"use_post": true,
	})
	assert.False(t, result.IsError)
	assert.True(t, fhir.lastSearch.UsePOST)
	assert.Equal(t, "10", fhir.lastSearch.Params["_count"])
	assert.Equal(t, "Patient/pat-1", fhir.lastSearch.Params["patient"])
}

func TestProcessBundleRejectsWrongType(t *testing.T) {
	r, _, fhir := newTestRegistry(false)

	result := invoke(t, r, "process_fhir_bundle", map[string]any{
		"datastore_id": "ds-1",
		"bundle":       map[string]any{"resourceType": "Bundle", "type": "searchset"},
	})
	assert.True(t, result.IsError)
	payload := decodeResult(t, result)
	assert.Equal(t, "validation_error", payload["error"])
	assert.Zero(t, fhir.calls)
}

func TestTemplateRoundTripsThroughValidation(t *testing.T) {
	r, _, _ := newTestRegistry(false)

	list := decodeResult(t, invoke(t, r, "list_supported_resource_types", map[string]any{}))
	types, ok := list["resource_types"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, types)

	for _, raw := range types {
		rt := raw.(string)
		tmpl := decodeResult(t, invoke(t, r, "get_resource_template", map[string]any{
			"resource_type": rt,
		}))
		result := invoke(t, r, "validate_fhir_resource", map[string]any{
			"resource_type": rt,
			"resource_data": tmpl,
		})
		assert.False(t, result.IsError, "template for %q failed validation", rt)
		payload := decodeResult(t, result)
		assert.Equal(t, true, payload["valid"], "template for %q is invalid", rt)
	}
}

func TestUnknownTemplateTypeIsValidationError(t *testing.T) {
	r, _, _ := newTestRegistry(false)

	result := invoke(t, r, "get_resource_template", map[string]any{"resource_type": "Spaceship"})
	assert.True(t, result.IsError)
	payload := decodeResult(t, result)
	assert.Equal(t, "validation_error", payload["error"])
}
