package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lakefhir/healthlake-mcp-server/healthlake"
	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

func (r *Registry) jobTools() []definition {
	return []definition{
		{
			tool: mcp.NewTool(
				"start_fhir_import_job",
				mcp.WithDescription("Start a bulk FHIR import job that loads newline-delimited JSON resources from S3 into a datastore."),
				mcp.WithString("datastore_id",
					mcp.Description("Target datastore ID."),
					mcp.Required(),
				),
				mcp.WithString("data_access_role_arn",
					mcp.Description("IAM role ARN HealthLake assumes to read the input bucket and write job output."),
					mcp.Required(),
				),
				mcp.WithObject("input_data_config",
					mcp.Description("Import source: {s3_uri}."),
					mcp.Required(),
				),
				mcp.WithObject("job_output_data_config",
					mcp.Description("Job output location: {s3_uri, kms_key_id}."),
					mcp.Required(),
				),
				mcp.WithString("job_name",
					mcp.Description("Display name for the job."),
				),
				mcp.WithString("client_token",
					mcp.Description("Idempotency token."),
				),
			),
			handler: r.handleStartImportJob,
		},
		{
			tool: mcp.NewTool(
				"start_fhir_export_job",
				mcp.WithDescription("Start a bulk FHIR export job that writes every resource in a datastore to S3 as newline-delimited JSON."),
				mcp.WithString("datastore_id",
					mcp.Description("Source datastore ID."),
					mcp.Required(),
				),
				mcp.WithString("data_access_role_arn",
					mcp.Description("IAM role ARN HealthLake assumes to write the output bucket."),
					mcp.Required(),
				),
				mcp.WithObject("output_data_config",
					mcp.Description("Export destination: {s3_uri, kms_key_id}."),
					mcp.Required(),
				),
				mcp.WithString("job_name",
					mcp.Description("Display name for the job."),
				),
				mcp.WithString("client_token",
					mcp.Description("Idempotency token."),
				),
			),
			handler: r.handleStartExportJob,
		},
		{
			tool: mcp.NewTool(
				"describe_fhir_import_job",
				mcp.WithDescription("Describe a FHIR import job: status, progress report, and data configs."),
				mcp.WithString("datastore_id", mcp.Description("Datastore the job ran against."), mcp.Required()),
				mcp.WithString("job_id", mcp.Description("Import job ID."), mcp.Required()),
			),
			handler: r.handleDescribeImportJob,
		},
		{
			tool: mcp.NewTool(
				"describe_fhir_export_job",
				mcp.WithDescription("Describe a FHIR export job: status and output location."),
				mcp.WithString("datastore_id", mcp.Description("Datastore the job ran against."), mcp.Required()),
				mcp.WithString("job_id", mcp.Description("Export job ID."), mcp.Required()),
			),
			handler: r.handleDescribeExportJob,
		},
		{
			tool: mcp.NewTool(
				"list_fhir_import_jobs",
				mcp.WithDescription("List FHIR import jobs for a datastore, optionally filtered by name, status, or submission time."),
				mcp.WithString("datastore_id", mcp.Description("Datastore to list jobs for."), mcp.Required()),
				mcp.WithString("next_token", mcp.Description("Pagination token from a previous listing.")),
				mcp.WithNumber("max_results", mcp.Description("Maximum number of jobs to return.")),
				mcp.WithString("job_name", mcp.Description("Filter by job name.")),
				mcp.WithString("job_status", mcp.Description("Filter by status: SUBMITTED, IN_PROGRESS, COMPLETED, COMPLETED_WITH_ERRORS, FAILED.")),
				mcp.WithString("submitted_before", mcp.Description("Only jobs submitted before this RFC3339 timestamp.")),
				mcp.WithString("submitted_after", mcp.Description("Only jobs submitted after this RFC3339 timestamp.")),
			),
			handler: r.handleListImportJobs,
		},
		{
			tool: mcp.NewTool(
				"list_fhir_export_jobs",
				mcp.WithDescription("List FHIR export jobs for a datastore, optionally filtered by name, status, or submission time."),
				mcp.WithString("datastore_id", mcp.Description("Datastore to list jobs for."), mcp.Required()),
				mcp.WithString("next_token", mcp.Description("Pagination token from a previous listing.")),
				mcp.WithNumber("max_results", mcp.Description("Maximum number of jobs to return.")),
				mcp.WithString("job_name", mcp.Description("Filter by job name.")),
				mcp.WithString("job_status", mcp.Description("Filter by status: SUBMITTED, IN_PROGRESS, COMPLETED, COMPLETED_WITH_ERRORS, FAILED.")),
				mcp.WithString("submitted_before", mcp.Description("Only jobs submitted before this RFC3339 timestamp.")),
				mcp.WithString("submitted_after", mcp.Description("Only jobs submitted after this RFC3339 timestamp.")),
			),
			handler: r.handleListExportJobs,
		},
	}
}

func (r *Registry) handleStartImportJob(ctx context.Context, args map[string]any) (any, error) {
	var p healthlake.StartImportJobParams
	var err error
	if p.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if p.DataAccessRoleArn, err = requireString(args, "data_access_role_arn"); err != nil {
		return nil, err
	}
	if _, err = requireObject(args, "input_data_config"); err != nil {
		return nil, err
	}
	if _, err = requireObject(args, "job_output_data_config"); err != nil {
		return nil, err
	}
	if err = bindArg(args, "input_data_config", &p.InputDataConfig); err != nil {
		return nil, err
	}
	if err = bindArg(args, "job_output_data_config", &p.JobOutputDataConfig); err != nil {
		return nil, err
	}
	if p.InputDataConfig.S3URI == "" {
		return nil, toolerr.MissingParam("input_data_config.s3_uri")
	}
	if p.JobOutputDataConfig.S3URI == "" {
		return nil, toolerr.MissingParam("job_output_data_config.s3_uri")
	}
	if p.JobName, err = optionalString(args, "job_name"); err != nil {
		return nil, err
	}
	if p.ClientToken, err = optionalString(args, "client_token"); err != nil {
		return nil, err
	}
	return r.mgmt.StartImportJob(ctx, p)
}

func (r *Registry) handleStartExportJob(ctx context.Context, args map[string]any) (any, error) {
	var p healthlake.StartExportJobParams
	var err error
	if p.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return nil, err
	}
	if p.DataAccessRoleArn, err = requireString(args, "data_access_role_arn"); err != nil {
		return nil, err
	}
	if _, err = requireObject(args, "output_data_config"); err != nil {
		return nil, err
	}
	if err = bindArg(args, "output_data_config", &p.OutputDataConfig); err != nil {
		return nil, err
	}
	if p.OutputDataConfig.S3URI == "" {
		return nil, toolerr.MissingParam("output_data_config.s3_uri")
	}
	if p.JobName, err = optionalString(args, "job_name"); err != nil {
		return nil, err
	}
	if p.ClientToken, err = optionalString(args, "client_token"); err != nil {
		return nil, err
	}
	return r.mgmt.StartExportJob(ctx, p)
}

func (r *Registry) handleDescribeImportJob(ctx context.Context, args map[string]any) (any, error) {
	datastoreID, err := requireString(args, "datastore_id")
	if err != nil {
		return nil, err
	}
	jobID, err := requireString(args, "job_id")
	if err != nil {
		return nil, err
	}
	return r.mgmt.DescribeImportJob(ctx, datastoreID, jobID)
}

func (r *Registry) handleDescribeExportJob(ctx context.Context, args map[string]any) (any, error) {
	datastoreID, err := requireString(args, "datastore_id")
	if err != nil {
		return nil, err
	}
	jobID, err := requireString(args, "job_id")
	if err != nil {
		return nil, err
	}
	return r.mgmt.DescribeExportJob(ctx, datastoreID, jobID)
}

func (r *Registry) listJobsParams(args map[string]any) (healthlake.ListJobsParams, error) {
	var p healthlake.ListJobsParams
	var err error
	if p.DatastoreID, err = requireString(args, "datastore_id"); err != nil {
		return p, err
	}
	if p.NextToken, err = optionalString(args, "next_token"); err != nil {
		return p, err
	}
	if p.MaxResults, err = optionalInt32(args, "max_results"); err != nil {
		return p, err
	}
	if p.JobName, err = optionalString(args, "job_name"); err != nil {
		return p, err
	}
	if p.JobStatus, err = optionalString(args, "job_status"); err != nil {
		return p, err
	}
	if p.SubmittedBefore, err = optionalString(args, "submitted_before"); err != nil {
		return p, err
	}
	if p.SubmittedAfter, err = optionalString(args, "submitted_after"); err != nil {
		return p, err
	}
	return p, nil
}

func (r *Registry) handleListImportJobs(ctx context.Context, args map[string]any) (any, error) {
	p, err := r.listJobsParams(args)
	if err != nil {
		return nil, err
	}
	return r.mgmt.ListImportJobs(ctx, p)
}

func (r *Registry) handleListExportJobs(ctx context.Context, args map[string]any) (any, error) {
	p, err := r.listJobsParams(args)
	if err != nil {
		return nil, err
	}
	return r.mgmt.ListExportJobs(ctx, p)
}
