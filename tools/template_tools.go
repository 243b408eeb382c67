package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/fhirmodel"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

func (r *Registry) templateTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"get_resource_template",
				mcp.WithDescription("Return a skeleton FHIR resource of the given type with its required fields present, ready to fill in and create."),
				mcp.WithString("resource_type",
					mcp.Description("FHIR resource type to get a template for. See list_supported_resource_types."),
					mcp.Required(),
				),
			),
			handler: r.handleGetResourceTemplate,
		},
		{
			tool: mcp.NewTool(
				"validate_fhir_resource",
				mcp.WithDescription("Structurally validate a FHIR resource locally without contacting AWS. Returns an OperationOutcome listing any problems."),
				mcp.WithString("resource_type",
					mcp.Description("Expected FHIR resource type."),
					mcp.Required(),
				),
				mcp.WithObject("resource_data",
					mcp.Description("The resource body to validate."),
					mcp.Required(),
				),
			),
			handler: r.handleValidateResource,
		},
		{
			tool: mcp.NewTool(
				"list_supported_resource_types",
				mcp.WithDescription("List the FHIR resource types that have local templates and required-field validation rules."),
			),
			handler: r.handleListSupportedResourceTypes,
		},
	}
}

func (r *Registry) handleGetResourceTemplate(ctx context.Context, args map[string]any) (any, error) {
	resourceType, err := requireString(args, "resource_type")
	if err != nil {
		return nil, err
	}
	tmpl, err := fhirmodel.Template(resourceType)
	if err != nil {
		return nil, toolerr.Validationf("%v", err)
	}
	return tmpl, nil
}

func (r *Registry) handleValidateResource(ctx context.Context, args map[string]any) (any, error) {
	resourceType, err := requireString(args, "resource_type")
	if err != nil {
		return nil, err
	}
	resource, err := requireObject(args, "resource_data")
	if err != nil {
		return nil, err
	}

	issues := fhirmodel.Validate(resourceType, resource)
	outcome := fhirmodel.OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue:        issues,
	}
	if len(issues) == 0 {
		outcome.Issue = []fhirmodel.OperationOutcomeIssue{{
			Severity:    fhirmodel.IssueSeverityInformation,
			Code:        "informational",
			Diagnostics: "resource is structurally valid",
		}}
	}
	return map[string]any{
		"valid":   !outcome.HasErrors(),
		"outcome": outcome,
	}, nil
}

func (r *Registry) handleListSupportedResourceTypes(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{
		"resource_types": fhirmodel.SupportedResourceTypes(),
	}, nil
}
