package healthlake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshl "github.com/aws/aws-sdk-go-v2/service/healthlake"
	"github.com/aws/aws-sdk-go-v2/service/healthlake/types"
)

// InputDataConfig locates the source of an import job.
type InputDataConfig struct {
	S3URI string `json:"s3_uri"`
}

// OutputDataConfig locates the destination of an import/export job.
type OutputDataConfig struct {
	S3URI    string `json:"s3_uri"`
	KmsKeyID string `json:"kms_key_id,omitempty"`
}

// StartImportJobParams are the arguments of the start_fhir_import_job tool.
type StartImportJobParams struct {
	DatastoreID         string           `json:"datastore_id"`
	DataAccessRoleArn   string           `json:"data_access_role_arn"`
	InputDataConfig     InputDataConfig  `json:"input_data_config"`
	JobOutputDataConfig OutputDataConfig `json:"job_output_data_config"`
	JobName             string           `json:"job_name,omitempty"`
	ClientToken         string           `json:"client_token,omitempty"`
}

// StartImportJob starts a FHIR bulk import from S3.
func (c *Client) StartImportJob(ctx context.Context, p StartImportJobParams) (*awshl.StartFHIRImportJobOutput, error) {
	in := &awshl.StartFHIRImportJobInput{
		DatastoreId:         aws.String(p.DatastoreID),
		DataAccessRoleArn:   aws.String(p.DataAccessRoleArn),
		InputDataConfig:     &types.InputDataConfigMemberS3Uri{Value: p.InputDataConfig.S3URI},
		JobOutputDataConfig: toSDKOutputConfig(p.JobOutputDataConfig),
	}
	if p.JobName != "" {
		in.JobName = aws.String(p.JobName)
	}
	if p.ClientToken != "" {
		in.ClientToken = aws.String(p.ClientToken)
	}

	out, err := c.api.StartFHIRImportJob(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("StartFHIRImportJob", err)
	}
	return out, nil
}

// StartExportJobParams are the arguments of the start_fhir_export_job tool.
type StartExportJobParams struct {
	DatastoreID       string           `json:"datastore_id"`
	DataAccessRoleArn string           `json:"data_access_role_arn"`
	OutputDataConfig  OutputDataConfig `json:"output_data_config"`
	JobName           string           `json:"job_name,omitempty"`
	ClientToken       string           `json:"client_token,omitempty"`
}

// StartExportJob starts a FHIR bulk export to S3.
func (c *Client) StartExportJob(ctx context.Context, p StartExportJobParams) (*awshl.StartFHIRExportJobOutput, error) {
	in := &awshl.StartFHIRExportJobInput{
		DatastoreId:       aws.String(p.DatastoreID),
		DataAccessRoleArn: aws.String(p.DataAccessRoleArn),
		OutputDataConfig:  toSDKOutputConfig(p.OutputDataConfig),
	}
	if p.JobName != "" {
		in.JobName = aws.String(p.JobName)
	}
	if p.ClientToken != "" {
		in.ClientToken = aws.String(p.ClientToken)
	}

	out, err := c.api.StartFHIRExportJob(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("StartFHIRExportJob", err)
	}
	return out, nil
}

// DescribeImportJob returns the status of an import job.
func (c *Client) DescribeImportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRImportJobOutput, error) {
	out, err := c.api.DescribeFHIRImportJob(ctx, &awshl.DescribeFHIRImportJobInput{
		DatastoreId: aws.String(datastoreID),
		JobId:       aws.String(jobID),
	})
	if err != nil {
		return nil, NormalizeAWSError("DescribeFHIRImportJob", err)
	}
	return out, nil
}

// DescribeExportJob returns the status of an export job.
func (c *Client) DescribeExportJob(ctx context.Context, datastoreID, jobID string) (*awshl.DescribeFHIRExportJobOutput, error) {
	out, err := c.api.DescribeFHIRExportJob(ctx, &awshl.DescribeFHIRExportJobInput{
		DatastoreId: aws.String(datastoreID),
		JobId:       aws.String(jobID),
	})
	if err != nil {
		return nil, NormalizeAWSError("DescribeFHIRExportJob", err)
	}
	return out, nil
}

// ListJobsParams filter a job listing for one datastore.
type ListJobsParams struct {
	DatastoreID     string `json:"datastore_id"`
	NextToken       string `json:"next_token,omitempty"`
	MaxResults      int32  `json:"max_results,omitempty"`
	JobName         string `json:"job_name,omitempty"`
	JobStatus       string `json:"job_status,omitempty"`
	SubmittedBefore string `json:"submitted_before,omitempty"`
	SubmittedAfter  string `json:"submitted_after,omitempty"`
}

// ListImportJobs lists import jobs for a datastore.
func (c *Client) ListImportJobs(ctx context.Context, p ListJobsParams) (*awshl.ListFHIRImportJobsOutput, error) {
	in := &awshl.ListFHIRImportJobsInput{DatastoreId: aws.String(p.DatastoreID)}
	if p.NextToken != "" {
		in.NextToken = aws.String(p.NextToken)
	}
	if p.MaxResults > 0 {
		in.MaxResults = aws.Int32(p.MaxResults)
	}
	if p.JobName != "" {
		in.JobName = aws.String(p.JobName)
	}
	if p.JobStatus != "" {
		in.JobStatus = types.JobStatus(p.JobStatus)
	}
	t, err := parseOptionalTime("submitted_before", p.SubmittedBefore)
	if err != nil {
		return nil, err
	}
	in.SubmittedBefore = t
	t, err = parseOptionalTime("submitted_after", p.SubmittedAfter)
	if err != nil {
		return nil, err
	}
	in.SubmittedAfter = t

	out, err := c.api.ListFHIRImportJobs(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("ListFHIRImportJobs", err)
	}
	return out, nil
}

// ListExportJobs lists export jobs for a datastore.
func (c *Client) ListExportJobs(ctx context.Context, p ListJobsParams) (*awshl.ListFHIRExportJobsOutput, error) {
	in := &awshl.ListFHIRExportJobsInput{DatastoreId: aws.String(p.DatastoreID)}
	if p.NextToken != "" {
		in.NextToken = aws.String(p.NextToken)
	}
	if p.MaxResults > 0 {
		in.MaxResults = aws.Int32(p.MaxResults)
	}
	if p.JobName != "" {
		in.JobName = aws.String(p.JobName)
	}
	if p.JobStatus != "" {
		in.JobStatus = types.JobStatus(p.JobStatus)
	}
	t, err := parseOptionalTime("submitted_before", p.SubmittedBefore)
	if err != nil {
		return nil, err
	}
	in.SubmittedBefore = t
	t, err = parseOptionalTime("submitted_after", p.SubmittedAfter)
	if err != nil {
		return nil, err
	}
	in.SubmittedAfter = t

	out, err := c.api.ListFHIRExportJobs(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("ListFHIRExportJobs", err)
	}
	return out, nil
}

func toSDKOutputConfig(cfg OutputDataConfig) types.OutputDataConfig {
	s3 := types.S3Configuration{S3Uri: aws.String(cfg.S3URI)}
	if cfg.KmsKeyID != "" {
		s3.KmsKeyId = aws.String(cfg.KmsKeyID)
	}
	return &types.OutputDataConfigMemberS3Configuration{Value: s3}
}
