package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/fhirclient"
)

func (r *Registry) searchTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"search_fhir_resources",
				mcp.WithDescription("Search FHIR resources of one type. query_parameters carries FHIR search parameters verbatim, including modifiers like _include, _revinclude, _sort, _count, and _lastUpdated. Returns a searchset Bundle."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore to search."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type to search, e.g. Observation."),
					mcp.Required(),
				),
				mcp.WithObject("query_parameters",
					mcp.Description("FHIR search parameters as key/value pairs, e.g. {\"patient\":\"Patient/123\",\"_count\":\"10\"}."),
				),
				mcp.WithBoolean("use_post",
					mcp.Description("Send the search as POST {type}/_search with a form body, for long or sensitive parameter sets."),
				),
			),
			handler: r.handleSearchResources,
		},
		{
			tool: mcp.NewTool(
				"search_patient_compartment",
				mcp.WithDescription("Search the Patient compartment: every resource that references the given patient. Narrow to one resource type with resource_type."),
				mcp.WithString("datastore_id",
					mcp.Description("Datastore to search."),
					mcp.Required(),
				),
				mcp.WithString("patient_id",
					mcp.Description("Logical ID of the patient whose compartment is searched."),
					mcp.Required(),
				),
				mcp.WithString("resource_type",
					mcp.Description("Optional resource type to narrow the compartment, e.g. Condition."),
				),
				mcp.WithObject("query_parameters",
					mcp.Description("Additional FHIR search parameters."),
				),
			),
			handler: r.handleSearchCompartment,
		},
	}
}

func (r *Registry) handleSearchResources(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.SearchRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = requireString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.Params, err = optionalStringMap(args, "query_parameters"); err != nil {
		return nil, err
	}
	if req.UsePOST, err = optionalBool(args, "use_post"); err != nil {
		return nil, err
	}
	return r.fhir.Search(ctx, req)
}

func (r *Registry) handleSearchCompartment(ctx context.Context, args map[string]any) (any, error) {
	var req fhirclient.CompartmentSearchRequest
	var err error
	if req.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if req.PatientID, err = requireString(args, "patient_id"); err != nil {
		return nil, err
	}
	if req.ResourceType, err = optionalString(args, "resource_type"); err != nil {
		return nil, err
	}
	if req.Params, err = optionalStringMap(args, "query_parameters"); err != nil {
		return nil, err
	}
	return r.fhir.SearchCompartment(ctx, req)
}
