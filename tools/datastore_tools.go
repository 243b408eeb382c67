package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/healthlake"
)

func (r *Registry) datastoreTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"create_datastore",
				mcp.WithDescription("Create a new AWS HealthLake FHIR datastore. Returns the datastore ID, ARN, status, and endpoint."),
				mcp.WithString("datastore_type_version",
					mcp.Description("FHIR version of the datastore. HealthLake supports R4."),
					mcp.Required(),
				),
				mcp.WithString("datastore_name",
					mcp.Description("Display name for the datastore."),
				),
				mcp.WithObject("sse_configuration",
					mcp.Description("Server-side encryption settings: cmk_type (AWS_OWNED_KMS_KEY or CUSTOMER_MANAGED_KMS_KEY) and optional kms_key_id."),
				),
				mcp.WithObject("preload_data_config",
					mcp.Description("Sample data preloading: preload_data_type (SYNTHEA)."),
				),
				mcp.WithString("client_token",
					mcp.Description("Idempotency token for the creation request."),
				),
				mcp.WithArray("tags",
					mcp.Items(map[string]any{
						"type": "object",
						"properties": map[string]any{
							"key":   map[string]any{"type": "string"},
							"value": map[string]any{"type": "string"},
						},
					}),
					mcp.Description("Tags to attach to the datastore, as {key, value} pairs."),
				),
				mcp.WithObject("identity_provider_configuration",
					mcp.Description("SMART on FHIR settings: authorization_strategy, fine_grained_authorization_enabled, idp_lambda_arn, metadata."),
				),
			),
			handler: r.handleCreateDatastore,
		},
		{
			tool: mcp.NewTool(
				"delete_datastore",
				mcp.WithDescription("Delete a HealthLake FHIR datastore by ID. Deletion is asynchronous; the datastore transitions to DELETING."),
				mcp.WithString("datastore_id",
					mcp.Description("ID of the datastore to delete."),
					mcp.Required(),
				),
			),
			handler: r.handleDeleteDatastore,
		},
		{
			tool: mcp.NewTool(
				"describe_datastore",
				mcp.WithDescription("Describe a HealthLake FHIR datastore: status, endpoint, FHIR version, encryption, and creation time."),
				mcp.WithString("datastore_id",
					mcp.Description("ID of the datastore to describe."),
					mcp.Required(),
				),
			),
			handler: r.handleDescribeDatastore,
		},
		{
			tool: mcp.NewTool(
				"list_datastores",
				mcp.WithDescription("List HealthLake FHIR datastores in the region, optionally filtered by name, status, or creation time."),
				mcp.WithObject("filter",
					mcp.Description("Optional filter: datastore_name, datastore_status (CREATING/ACTIVE/DELETING/DELETED), created_before, created_after (RFC3339)."),
				),
				mcp.WithString("next_token",
					mcp.Description("Pagination token from a previous listing."),
				),
				mcp.WithNumber("max_results",
					mcp.Description("Maximum number of datastores to return."),
				),
			),
			handler: r.handleListDatastores,
		},
	}
}

func (r *Registry) handleCreateDatastore(ctx context.Context, args map[string]any) (any, error) {
	version, err := requireString(args, "datastore_type_version")
	if err != nil {
		return nil, err
	}
	p := healthlake.CreateDatastoreParams{DatastoreTypeVersion: version}
	if p.DatastoreName, err = optionalString(args, "datastore_name"); err != nil {
		return nil, err
	}
	if p.ClientToken, err = optionalString(args, "client_token"); err != nil {
		return nil, err
	}
	if err := bindArg(args, "sse_configuration", &p.SseConfiguration); err != nil {
		return nil, err
	}
	if err := bindArg(args, "preload_data_config", &p.PreloadDataConfig); err != nil {
		return nil, err
	}
	if err := bindArg(args, "tags", &p.Tags); err != nil {
		return nil, err
	}
	if err := bindArg(args, "identity_provider_configuration", &p.IdentityProviderConfiguration); err != nil {
		return nil, err
	}
	return r.mgmt.CreateDatastore(ctx, p)
}

func (r *Registry) handleDeleteDatastore(ctx context.Context, args map[string]any) (any, error) {
	id, err := requireString(args, "datastore_id")
	if err != nil {
		return nil, err
	}
	return r.mgmt.DeleteDatastore(ctx, id)
}

func (r *Registry) handleDescribeDatastore(ctx context.Context, args map[string]any) (any, error) {
	id, err := requireString(args, "datastore_id")
	if err != nil {
		return nil, err
	}
	return r.mgmt.DescribeDatastore(ctx, id)
}

func (r *Registry) handleListDatastores(ctx context.Context, args map[string]any) (any, error) {
	var p healthlake.ListDatastoresParams
	var err error
	if err = bindArg(args, "filter", &p.Filter); err != nil {
		return nil, err
	}
	if p.NextToken, err = optionalString(args, "next_token"); err != nil {
		return nil, err
	}
	if p.MaxResults, err = optionalInt32(args, "max_results"); err != nil {
		return nil, err
	}
	return r.mgmt.ListDatastores(ctx, p)
}
