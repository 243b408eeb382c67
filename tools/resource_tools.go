package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/fhirclient"
	"github.com/lakefhir/healthlake-mcp-server/fhirmodel"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

func (r *Registry) resourceTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"read_fhir_resource",
				mcp.WithDescription("Read a FHIR resource by type and ID from a HealthLake datastore. Pass version_id to read a specific historical version."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore to read from."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type, e.g. Patient or Observation."),
					mcp.Required(),
				),
				mcp.WithString("resource_id",
					mcp.Description("Logical ID of the resource."),
					mcp.Required(),
				),
				mcp.WithString("version_id",
					mcp.Description("Optional version ID; reads the versioned history entry instead of the current version."),
				),
			),
			handler: r.handleReadResource,
		},
		{
			tool: mcp.NewTool(
				"create_fhir_resource",
				mcp.WithDescription("Create a FHIR resource in a datastore. The resource is validated locally for required fields before it is sent."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore to create the resource in."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type of the new resource."),
					mcp.Required(),
				),
				mcp.WithObject("resource_data",
					mcp.Description("The full FHIR resource body as a JSON object."),
					mcp.Required(),
				),
				mcp.WithString("if_none_exist",
					mcp.Description("Conditional-create search criteria, e.g. 'identifier=http://example.org|mrn-42'. Sent as the If-None-Exist header."),
				),
			),
			handler: r.handleCreateResource,
		},
		{
			tool: mcp.NewTool(
				"update_fhir_resource",
				mcp.WithDescription("Replace a FHIR resource by type and ID. Pass if_match with the current version ETag for optimistic locking."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore holding the resource."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type."),
					mcp.Required(),
				),
				mcp.WithString("resource_id",
					mcp.Description("Logical ID of the resource to replace."),
					mcp.Required(),
				),
				mcp.WithObject("resource_data",
					mcp.Description("The full replacement resource body."),
					mcp.Required(),
				),
				mcp.WithString("if_match",
					mcp.Description("ETag of the version being replaced, e.g. 'W/\"3\"'. Sent as the If-Match header."),
				),
			),
			handler: r.handleUpdateResource,
		},
		{
			tool: mcp.NewTool(
				"patch_fhir_resource",
				mcp.WithDescription("Apply an RFC 6902 JSON Patch to a FHIR resource."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore holding the resource."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type."),
					mcp.Required(),
				),
				mcp.WithString("resource_id",
					mcp.Description("Logical ID of the resource to patch."),
					mcp.Required(),
				),
				mcp.WithArray("patch_operations",
					mcp.Items(map[string]any{"type": "object"}),
					mcp.Description("JSON Patch operations, e.g. [{\"op\":\"replace\",\"path\":\"/active\",\"value\":false}]."),
					mcp.Required(),
				),
				mcp.WithString("if_match",
					mcp.Description("ETag of the version being patched. Sent as the If-Match header."),
				),
			),
			handler: r.handlePatchResource,
		},
		{
			tool: mcp.NewTool(
				"delete_fhir_resource",
				mcp.WithDescription("Delete a FHIR resource by type and ID."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore holding the resource."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type."),
					mcp.Required(),
				),
				mcp.WithString("resource_id",
					mcp.Description("Logical ID of the resource to delete."),
					mcp.Required(),
				),
				mcp.WithString("if_match",
					mcp.Description("ETag of the version being deleted. Sent as the If-Match header."),
				),
			),
			handler: r.handleDeleteResource,
		},
		{
			tool: mcp.NewTool(
				"process_fhir_bundle",
				mcp.WithDescription("Submit a FHIR Bundle (transaction or batch) to a datastore. Transaction bundles are atomic."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore to submit the bundle to."),
					mcp.Required(),
				),
				mcp.WithObject("bundle",
					mcp.Description("The Bundle resource with type 'transaction' or 'batch'."),
					mcp.Required(),
				),
			),
			handler: r.handleProcessBundle,
		},
	}
}

func (r *Registry) handleReadResource(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.ReadRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.ResourceID, err = requireString(args, "resource_id"); err != nil {
		return nil, err
	}
	if req.VersionID, err = optionalString(args, "version_id"); err != nil {
		return nil, err
	}
	return r.fhir.Read(ctx, req)
}

func (r *Registry) handleCreateResource(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.CreateRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.Resource, err = requireObject(args, "resource_data"); err != nil {
		return nil, err
	}
	if req.IfNoneExist, err = optionalString(args, "if_none_exist"); err != nil {
		return nil, err
	}
	if err := validateResource(req.ResourceType, req.Resource); err != nil {
		return nil, err
	}
	return r.fhir.Create(ctx, req)
}

func (r *Registry) handleUpdateResource(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.UpdateRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.ResourceID, err = requireString(args, "resource_id"); err != nil {
		return nil, err
	}
	if req.Resource, err = requireObject(args, "resource_data"); err != nil {
		return nil, err
	}
	if req.IfMatch, err = optionalString(args, "if_match"); err != nil {
		return nil, err
	}
	if err := validateResource(req.ResourceType, req.Resource); err != nil {
		return nil, err
	}
	return r.fhir.Update(ctx, req)
}

func (r *Registry) handlePatchResource(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.PatchRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.ResourceID, err = requireString(args, "resource_id"); err != nil {
		return nil, err
	}
	if err = bindArg(args, "patch_operations", &req.Operations); err != nil {
		return nil, err
	}
	if len(req.Operations) == 0 {
		return nil, toolerr.MissingParam("patch_operations")
	}
	for i, op := range req.Operations {
		if _, ok := op["op"]; !ok {
			return nil, toolerr.Validationf("patch_operations[%d] is missing the \"op\" field", i)
		}
		if _, ok := op["path"]; !ok {
			return nil, toolerr.Validationf("patch_operations[%d] is missing the \"path\" field", i)
		}
	}
	if req.IfMatch, err = optionalString(args, "if_match"); err != nil {
		return nil, err
	}
	return r.fhir.Patch(ctx, req)
}

func (r *Registry) handleDeleteResource(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.DeleteRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.ResourceID, err = requireString(args, "resource_id"); err != nil {
		return nil, err
	}
	if req.IfMatch, err = optionalString(args, "if_match"); err != nil {
		return nil, err
	}
	return r.fhir.Delete(ctx, req)
}

func (r *Registry) handleProcessBundle(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.BundleRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.Bundle, err = requireObject(args, "bundle"); err != nil {
		return nil, err
	}
	if rt, _ := req.Bundle["resourceType"].(string); rt != "Bundle" {
		return nil, toolerr.Validationf("bundle must have resourceType \"Bundle\"")
	}
	switch bt, _ := req.Bundle["type"].(string); bt {
	case "transaction", "batch":
	default:
		return nil, toolerr.Validationf("bundle type must be \"transaction\" or \"batch\"")
	}
	return r.fhir.ProcessBundle(ctx, req)
}

// validateResource runs local structural validation and converts any error
// issues into a validation failure carrying the issue list.
func validateResource(resourceType string, resource map[string]any) error {
	issues := fhirmodel.Validate(resourceType, resource)
	var errIssues []toolerr.Issue
	for _, is := range issues {
		if is.Severity != fhirmodel.IssueSeverityError && is.Severity != fhirmodel.IssueSeverityFatal {
			continue
		}
		errIssues = append(errIssues, toolerr.Issue{
			Severity:    is.Severity,
			Code:        is.Code,
			Diagnostics: is.Diagnostics,
			Expression:  is.Expression,
		})
	}
	if len(errIssues) == 0 {
		return nil
	}
	return &toolerr.Error{
		Kind:    toolerr.KindValidation,
		Message: "resource failed local validation",
		Issues:  errIssues,
	}
}
