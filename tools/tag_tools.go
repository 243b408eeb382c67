package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/healthlake"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

func (r *Registry) tagTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"tag_resource",
				mcp.WithDescription("Add tags to a HealthLake datastore ARN."),
				mcp.WithString("resource_arn",
					mcp.Description("ARN of the datastore to tag."),
					mcp.Required(),
				),
				mcp.WithArray("tags",
					mcp.Items(map[string]any{
						"type": "object",
						"properties": map[string]any{
							"key":   map[string]any{"type": "string"},
							"value": map[string]any{"type": "string"},
						},
					}),
					mcp.Description("Tags to add, as {key, value} pairs."),
					mcp.Required(),
				),
			),
			handler: r.handleTagResource,
		},
		{
			tool: mcp.NewTool(
				"untag_resource",
				mcp.WithDescription("Remove tags from a HealthLake datastore ARN by key."),
				mcp.WithString("resource_arn",
					mcp.Description("ARN of the datastore to untag."),
					mcp.Required(),
				),
				mcp.WithArray("tag_keys",
					mcp.Items(map[string]any{"type": "string"}),
					mcp.Description("Tag keys to remove."),
					mcp.Required(),
				),
			),
			handler: r.handleUntagResource,
		},
		{
			tool: mcp.NewTool(
				"list_tags_for_resource",
				mcp.WithDescription("List the tags on a HealthLake datastore ARN."),
				mcp.WithString("resource_arn",
					mcp.Description("ARN of the datastore."),
					mcp.Required(),
				),
			),
			handler: r.handleListTagsForResource,
		},
	}
}

func (r *Registry) handleTagResource(ctx context.Context, args map[string]any) (any, error) {
	arn, err := requireString(args, "resource_arn")
	if err != nil {
		return nil, err
	}
	var tags []healthlake.Tag
	if err := bindArg(args, "tags", &tags); err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, toolerr.MissingParam("tags")
	}
	return r.mgmt.TagResource(ctx, arn, tags)
}

func (r *Registry) handleUntagResource(ctx context.Context, args map[string]any) (any, error) {
	arn, err := requireString(args, "resource_arn")
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := bindArg(args, "tag_keys", &keys); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, toolerr.MissingParam("tag_keys")
	}
	return r.mgmt.UntagResource(ctx, arn, keys)
}

func (r *Registry) handleListTagsForResource(ctx context.Context, args map[string]any) (any, error) {
	arn, err := requireString(args, "resource_arn")
	if err != nil {
		return nil, err
	}
	return r.mgmt.ListTagsForResource(ctx, arn)
}
