package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves credentials from the default chain unless static keys are set.
func loadAWSConfig(ctx context.Context, access AWSAccess) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(access.Region)}
	if access.AccessKeyID != "" && access.SecretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(access.AccessKeyID, access.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// endpointOverride returns the base endpoint for localstack-style setups, nil for AWS itself.
func endpointOverride(access AWSAccess) *string {
	if access.Endpoint == "" {
		return nil
	}
	return aws.String(access.Endpoint)
}

// awsMessage is an event encoded for SQS and SNS: a JSON body plus string attributes.
type awsMessage struct {
	body  *string
	attrs map[string]string
}

func newAWSMessage(evt Event) (awsMessage, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return awsMessage{}, fmt.Errorf("marshal %s event: %w", evt.Type, err)
	}
	return awsMessage{body: aws.String(string(payload)), attrs: evt.attributes()}, nil
}
