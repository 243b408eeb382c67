package healthlake

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshl "github.com/aws/aws-sdk-go-v2/service/healthlake"
)

// TagResource adds tags to a datastore ARN.
func (c *Client) TagResource(ctx context.Context, resourceARN string, tags []Tag) (*awshl.TagResourceOutput, error) {
	out, err := c.api.TagResource(ctx, &awshl.TagResourceInput{
		ResourceARN: aws.String(resourceARN),
		Tags:        toSDKTags(tags),
	})
	if err != nil {
		return nil, NormalizeAWSError("TagResource", err)
	}
	return out, nil
}

// UntagResource removes tags from a datastore ARN by key.
func (c *Client) UntagResource(ctx context.Context, resourceARN string, tagKeys []string) (*awshl.UntagResourceOutput, error) {
	out, err := c.api.UntagResource(ctx, &awshl.UntagResourceInput{
		ResourceARN: aws.String(resourceARN),
		TagKeys:     tagKeys,
	})
	if err != nil {
		return nil, NormalizeAWSError("UntagResource", err)
	}
	return out, nil
}

// ListTagsForResource lists the tags on a datastore ARN.
func (c *Client) ListTagsForResource(ctx context.Context, resourceARN string) (*awshl.ListTagsForResourceOutput, error) {
	out, err := c.api.ListTagsForResource(ctx, &awshl.ListTagsForResourceInput{
		ResourceARN: aws.String(resourceARN),
	})
	if err != nil {
		return nil, NormalizeAWSError("ListTagsForResource", err)
	}
	return out, nil
}
