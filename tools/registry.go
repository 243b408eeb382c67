// Package tools defines the MCP tool surface of the server: schema
// declarations, argument validation, and dispatch into the management-plane
// and data-plane clients. Handlers validate everything locally before any
// network call, and every failure comes back as one uniform JSON error shape.
package tools

import (
	"context"
	"encoding/json"

	awshl "github.com/aws/aws-sdk-go-v2/service/healthlake"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lakefhir/healthlake-mcp-server/fhirclient"
	"github.com/lakefhir/healthlake-mcp-server/healthlake"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

// ManagementService is the management-plane surface the tools call.
// *healthlake.Client satisfies it.
type ManagementService interface {
	CreateDatastore(ctx context.Context, p healthlake.CreateDatastoreParams) (*awshl.CreateFHIRDatastoreOutput, error)
	DeleteDatastore(ctx context.Context, datastoreID string) (*awshl.DeleteFHIRDatastoreOutput, error)
	DescribeDatastore(ctx context.Context, datastoreID string) (*awshl.DescribeFHIRDatastoreOutput, error)
	ListDatastores(ctx context.Context, p healthlake.ListDatastoresParams) (*awshl.ListFHIRDatastoresOutput, error)
	StartImportJob(ctx context.Context, p healthlake.StartImportJobParams) (*awshl.StartFHIRImportJobOutput, error)
	StartExportJob(ctx context.Context, p healthlake.StartExportJobParams) (*awshl.StartFHIRExportJobOutput, error)
	DescribeImportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRImportJobOutput, error)
	DescribeExportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRExportJobOutput, error)
	ListImportJobs(ctx context.Context, p healthlake.ListJobsParams) (*awshl.ListFHIRImportJobsOutput, error)
	ListExportJobs(ctx context.Context, p healthlake.ListJobsParams) (*awshl.ListFHIRExportJobsOutput, error)
	TagResource(ctx context.Context, resourceARN string, tags []healthlake.Tag) (*awshl.TagResourceOutput, error)
	UntagResource(ctx context.Context, resourceARN string, tagKeys []string) (*awshl.UntagResourceOutput, error)
	ListTagsForResource(ctx context.Context, resourceARN string) (*awshl.ListTagsForResourceOutput, error)
}

// FHIRService is the data-plane surface the tools call.
// *fhirclient.Client satisfies it.
type FHIRService interface {
	Read(ctx context.Context, r fhirclient.ReadRequest) (map[string]any, error)
	Create(ctx context.Context, r fhirclient.CreateRequest) (map[string]any, error)
	Update(ctx context.Context, r fhirclient.UpdateRequest) (map[string]any, error)
	Patch(ctx context.Context, r fhirclient.PatchRequest) (map[string]any, error)
	Delete(ctx context.Context, r fhirclient.DeleteRequest) (map[string]any, error)
	Search(ctx context.Context, r fhirclient.SearchRequest) (map[string]any, error)
	SearchCompartment(ctx context.Context, r fhirclient.CompartmentSearchRequest) (map[string]any, error)
	ProcessBundle(ctx context.Context, r fhirclient.BundleRequest) (map[string]any, error)
}

// Registry owns the tool definitions and their handlers.
type Registry struct {
	mgmt     ManagementService
	fhir     FHIRService
	readOnly bool
	logger   *zap.Logger
}

// NewRegistry builds the registry. With readOnly set, every mutating tool is
// rejected before argument parsing and before any network traffic.
func NewRegistry(mgmt ManagementService, fhir FHIRService, readOnly bool, logger *zap.Logger) *Registry {
	return &Registry{mgmt: mgmt, fhir: fhir, readOnly: readOnly, logger: logger}
}

// definition pairs a tool schema with its handler.
type definition struct {
	tool    mcp.Tool
	handler handlerFunc
}

// handlerFunc is the internal handler shape: arguments in, JSON-serializable
// result or normalized error out.
type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Register adds every tool to the MCP server.
func (r *Registry) Register(s *server.MCPServer) {
	for _, d := range r.definitions() {
		s.AddTool(d.tool, r.wrap(d.tool.Name, d.handler))
	}
}

// Definitions returns the tool schemas, for listing without a server.
func (r *Registry) Definitions() []mcp.Tool {
	defs := r.definitions()
	tools := make([]mcp.Tool, len(defs))
	for i, d := range defs {
		tools[i] = d.tool
	}
	return tools
}

func (r *Registry) definitions() []definition {
	var defs []definition
	defs = append(defs, r.datastoreTools()...)
	defs = append(defs, r.jobTools()...)
	defs = append(defs, r.tagTools()...)
	defs = append(defs, r.resourceTools()...)
	defs = append(defs, r.searchTools()...)
	defs = append(defs, r.templateTools()...)
	return defs
}

// wrap applies the read-only gate, invocation logging, and error shaping
// around a handler.
func (r *Registry) wrap(name string, h handlerFunc) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := r.logger.With(
			zap.String("tool", name),
			zap.String("invocation_id", uuid.NewString()),
		)

		if r.readOnly && isMutating(name) {
			log.Warn("mutating tool rejected in read-only mode")
			return errorResult(toolerr.ReadOnly(name)), nil
		}

		result, err := h(ctx, req.GetArguments())
		if err != nil {
			te := asToolError(name, err)
			log.Warn("tool failed",
				zap.String("kind", string(te.Kind)),
				zap.String("message", te.Message),
			)
			return errorResult(te), nil
		}

		log.Debug("tool succeeded")
		return jsonResult(result)
	}
}

// asToolError coerces any handler error into the uniform shape.
func asToolError(tool string, err error) *toolerr.Error {
	if te, ok := err.(*toolerr.Error); ok {
		if te.Operation == "" {
			te.Operation = tool
		}
		return te
	}
	return &toolerr.Error{
		Kind:      toolerr.KindService,
		Message:   err.Error(),
		Operation: tool,
	}
}

// jsonResult serializes a successful tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return errorResult(toolerr.New(toolerr.KindService,
			"failed to serialize tool result: "+err.Error())), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// errorResult serializes a normalized error as the tool result payload.
// Errors are data to the calling agent, not protocol failures.
func errorResult(te *toolerr.Error) *mcp.CallToolResult {
	return mcp.NewToolResultError(te.JSON())
}
