// Package healthlake wraps the AWS HealthLake management-plane API. It is a
// parameter-translation layer: tool arguments in, SDK calls out, with no
// retry or caching policy beyond the SDK defaults.
package healthlake

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awshl "github.com/aws/aws-sdk-go-v2/service/healthlake"
	"github.com/aws/aws-sdk-go-v2/service/healthlake/types"

	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

// api is the slice of the HealthLake SDK client the adapter uses.
// *awshl.Client satisfies it; tests substitute a fake.
type api interface {
	CreateFHIRDatastore(ctx context.Context, params *awshl.CreateFHIRDatastoreInput, optFns ...func(*awshl.Options)) (*awshl.CreateFHIRDatastoreOutput, error)
	DeleteFHIRDatastore(ctx context.Context, params *awshl.DeleteFHIRDatastoreInput, optFns ...func(*awshl.Options)) (*awshl.DeleteFHIRDatastoreOutput, error)
	DescribeFHIRDatastore(ctx context.Context, params *awshl.DescribeFHIRDatastoreInput, optFns ...func(*awshl.Options)) (*awshl.DescribeFHIRDatastoreOutput, error)
	ListFHIRDatastores(ctx context.Context, params *awshl.ListFHIRDatastoresInput, optFns ...func(*awshl.Options)) (*awshl.ListFHIRDatastoresOutput, error)
	StartFHIRImportJob(ctx context.Context, params *awshl.StartFHIRImportJobInput, optFns ...func(*awshl.Options)) (*awshl.StartFHIRImportJobOutput, error)
	StartFHIRExportJob(ctx context.Context, params *awshl.StartFHIRExportJobInput, optFns ...func(*awshl.Options)) (*awshl.StartFHIRExportJobOutput, error)
	DescribeFHIRImportJob(ctx context.Context, params *awshl.DescribeFHIRImportJobInput, optFns ...func(*awshl.Options)) (*awshl.DescribeFHIRImportJobOutput, error)
	DescribeFHIRExportJob(ctx context.Context, params *awshl.DescribeFHIRExportJobInput, optFns ...func(*awshl.Options)) (*awshl.DescribeFHIRExportJobOutput, error)
	ListFHIRImportJobs(ctx context.Context, params *awshl.ListFHIRImportJobsInput, optFns ...func(*awshl.Options)) (*awshl.ListFHIRImportJobsOutput, error)
	ListFHIRExportJobs(ctx context.Context, params *awshl.ListFHIRExportJobsInput, optFns ...func(*awshl.Options)) (*awshl.ListFHIRExportJobsOutput, error)
	TagResource(ctx context.Context, params *awshl.TagResourceInput, optFns ...func(*awshl.Options)) (*awshl.TagResourceOutput, error)
	UntagResource(ctx context.Context, params *awshl.UntagResourceInput, optFns ...func(*awshl.Options)) (*awshl.UntagResourceOutput, error)
	ListTagsForResource(ctx context.Context, params *awshl.ListTagsForResourceInput, optFns ...func(*awshl.Options)) (*awshl.ListTagsForResourceOutput, error)
}

// Client is the management-plane client. It also exposes the AWS credentials
// the data-plane client needs for SigV4 signing.
type Client struct {
	api    api
	region string
	creds  aws.CredentialsProvider
}

// New loads the default AWS credential chain for the region and builds a
// HealthLake client. Retry policy matches the upstream service defaults:
// adaptive mode, three attempts.
func New(ctx context.Context, region string) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:    awshl.NewFromConfig(awsCfg),
		region: region,
		creds:  awsCfg.Credentials,
	}, nil
}

// Region returns the region the client is bound to.
func (c *Client) Region() string { return c.region }

// Credentials returns the resolved AWS credential provider.
func (c *Client) Credentials() aws.CredentialsProvider { return c.creds }

// Tag is a key/value pair attached to a datastore ARN.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SseConfiguration selects server-side encryption for a new datastore.
type SseConfiguration struct {
	CmkType  string `json:"cmk_type"`
	KmsKeyID string `json:"kms_key_id,omitempty"`
}

// PreloadDataConfig requests sample data preloading on datastore creation.
type PreloadDataConfig struct {
	PreloadDataType string `json:"preload_data_type"`
}

// IdentityProviderConfiguration configures SMART on FHIR authorization.
type IdentityProviderConfiguration struct {
	AuthorizationStrategy           string `json:"authorization_strategy"`
	FineGrainedAuthorizationEnabled bool   `json:"fine_grained_authorization_enabled,omitempty"`
	IdpLambdaArn                    string `json:"idp_lambda_arn,omitempty"`
	Metadata                        string `json:"metadata,omitempty"`
}

// CreateDatastoreParams are the arguments of the create_datastore tool.
type CreateDatastoreParams struct {
	DatastoreTypeVersion          string                         `json:"datastore_type_version"`
	DatastoreName                 string                         `json:"datastore_name,omitempty"`
	SseConfiguration              *SseConfiguration              `json:"sse_configuration,omitempty"`
	PreloadDataConfig             *PreloadDataConfig             `json:"preload_data_config,omitempty"`
	ClientToken                   string                         `json:"client_token,omitempty"`
	Tags                          []Tag                          `json:"tags,omitempty"`
	IdentityProviderConfiguration *IdentityProviderConfiguration `json:"identity_provider_configuration,omitempty"`
}

// CreateDatastore creates a new FHIR datastore.
func (c *Client) CreateDatastore(ctx context.Context, p CreateDatastoreParams) (*awshl.CreateFHIRDatastoreOutput, error) {
	in := &awshl.CreateFHIRDatastoreInput{
		DatastoreTypeVersion: types.FHIRVersion(p.DatastoreTypeVersion),
	}
	if p.DatastoreName != "" {
		in.DatastoreName = aws.String(p.DatastoreName)
	}
	if p.SseConfiguration != nil {
		kms := &types.KmsEncryptionConfig{CmkType: types.CmkType(p.SseConfiguration.CmkType)}
		if p.SseConfiguration.KmsKeyID != "" {
			kms.KmsKeyId = aws.String(p.SseConfiguration.KmsKeyID)
		}
		in.SseConfiguration = &types.SseConfiguration{KmsEncryptionConfig: kms}
	}
	if p.PreloadDataConfig != nil {
		in.PreloadDataConfig = &types.PreloadDataConfig{
			PreloadDataType: types.PreloadDataType(p.PreloadDataConfig.PreloadDataType),
		}
	}
	if p.ClientToken != "" {
		in.ClientToken = aws.String(p.ClientToken)
	}
	if len(p.Tags) > 0 {
		in.Tags = toSDKTags(p.Tags)
	}
	if p.IdentityProviderConfiguration != nil {
		idp := &types.IdentityProviderConfiguration{
			AuthorizationStrategy:           types.AuthorizationStrategy(p.IdentityProviderConfiguration.AuthorizationStrategy),
			FineGrainedAuthorizationEnabled: p.IdentityProviderConfiguration.FineGrainedAuthorizationEnabled,
		}
		if p.IdentityProviderConfiguration.IdpLambdaArn != "" {
			idp.IdpLambdaArn = aws.String(p.IdentityProviderConfiguration.IdpLambdaArn)
		}
		if p.IdentityProviderConfiguration.Metadata != "" {
			idp.Metadata = aws.String(p.IdentityProviderConfiguration.Metadata)
		}
		in.IdentityProviderConfiguration = idp
	}

	out, err := c.api.CreateFHIRDatastore(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("CreateFHIRDatastore", err)
	}
	return out, nil
}

// DeleteDatastore deletes a datastore by ID.
func (c *Client) DeleteDatastore(ctx context.Context, datastoreID string) (*awshl.DeleteFHIRDatastoreOutput, error) {
	out, err := c.api.DeleteFHIRDatastore(ctx, &awshl.DeleteFHIRDatastoreInput{
		DatastoreId: aws.String(datastoreID),
	})
	if err != nil {
		return nil, NormalizeAWSError("DeleteFHIRDatastore", err)
	}
	return out, nil
}

// DescribeDatastore returns the properties of a datastore.
func (c *Client) DescribeDatastore(ctx context.Context, datastoreID string) (*awshl.DescribeFHIRDatastoreOutput, error) {
	out, err := c.api.DescribeFHIRDatastore(ctx, &awshl.DescribeFHIRDatastoreInput{
		DatastoreId: aws.String(datastoreID),
	})
	if err != nil {
		return nil, NormalizeAWSError("DescribeFHIRDatastore", err)
	}
	return out, nil
}

// DatastoreEndpoint resolves the FHIR endpoint URL of a datastore. The
// data-plane client calls this per request; nothing is cached locally.
func (c *Client) DatastoreEndpoint(ctx context.Context, datastoreID string) (string, error) {
	out, err := c.DescribeDatastore(ctx, datastoreID)
	if err != nil {
		return "", err
	}
	if out.DatastoreProperties == nil || out.DatastoreProperties.DatastoreEndpoint == nil {
		return "", toolerr.New(toolerr.KindService,
			fmt.Sprintf("datastore %s has no FHIR endpoint", datastoreID))
	}
	return *out.DatastoreProperties.DatastoreEndpoint, nil
}

// DatastoreFilter narrows a datastore listing.
type DatastoreFilter struct {
	DatastoreName   string `json:"datastore_name,omitempty"`
	DatastoreStatus string `json:"datastore_status,omitempty"`
	CreatedBefore   string `json:"created_before,omitempty"`
	CreatedAfter    string `json:"created_after,omitempty"`
}

// ListDatastoresParams are the arguments of the list_datastores tool.
type ListDatastoresParams struct {
	Filter     *DatastoreFilter `json:"filter,omitempty"`
	NextToken  string           `json:"next_token,omitempty"`
	MaxResults int32            `json:"max_results,omitempty"`
}

// ListDatastores lists datastores in the region.
func (c *Client) ListDatastores(ctx context.Context, p ListDatastoresParams) (*awshl.ListFHIRDatastoresOutput, error) {
	in := &awshl.ListFHIRDatastoresInput{}
	if p.Filter != nil {
		filter := &types.DatastoreFilter{}
		if p.Filter.DatastoreName != "" {
			filter.DatastoreName = aws.String(p.Filter.DatastoreName)
		}
		if p.Filter.DatastoreStatus != "" {
			filter.DatastoreStatus = types.DatastoreStatus(p.Filter.DatastoreStatus)
		}
		t, err := parseOptionalTime("filter.created_before", p.Filter.CreatedBefore)
		if err != nil {
			return nil, err
		}
		filter.CreatedBefore = t
		t, err = parseOptionalTime("filter.created_after", p.Filter.CreatedAfter)
		if err != nil {
			return nil, err
		}
		filter.CreatedAfter = t
		in.Filter = filter
	}
	if p.NextToken != "" {
		in.NextToken = aws.String(p.NextToken)
	}
	if p.MaxResults > 0 {
		in.MaxResults = aws.Int32(p.MaxResults)
	}

	out, err := c.api.ListFHIRDatastores(ctx, in)
	if err != nil {
		return nil, NormalizeAWSError("ListFHIRDatastores", err)
	}
	return out, nil
}

func toSDKTags(tags []Tag) []types.Tag {
	out := make([]types.Tag, len(tags))
	for i, t := range tags {
		out[i] = types.Tag{Key: aws.String(t.Key), Value: aws.String(t.Value)}
	}
	return out
}

// parseOptionalTime parses an RFC3339 timestamp argument, returning nil for
// the empty string and a validation error for malformed input.
func parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, toolerr.Validationf("%s must be an RFC3339 timestamp: %v", field, err)
	}
	return &t, nil
}
