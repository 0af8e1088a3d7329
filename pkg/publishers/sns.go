package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// topicPublisher broadcasts user events on an SNS topic.
type topicPublisher struct {
	id       string
	topicARN string
	api      snsAPI
	log      Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSAccess)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SNS.AWSAccess)
	return &topicPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		api:      sns.NewFromConfig(awsCfg, func(o *sns.Options) { o.BaseEndpoint = endpoint }),
		log:      orNop(log),
	}, nil
}

func (p *topicPublisher) ID() string   { return p.id }
func (p *topicPublisher) Type() string { return TypeSNS }

func (p *topicPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newAWSMessage(evt)
	if err != nil {
		return err
	}
	attrs := make(map[string]types.MessageAttributeValue, len(msg.attrs))
	for name, value := range msg.attrs {
		attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}

	out, err := p.api.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(p.topicARN),
		Message:           msg.body,
		MessageAttributes: attrs,
	})
	if err != nil {
		p.log.ErrorObj("sns broadcast failed", "publisher_sns_error", map[string]any{
			"publisher_id": p.id,
			"event_type":   evt.Type,
			"error":        err.Error(),
		})
		return fmt.Errorf("broadcast %s: %w", evt.Type, err)
	}
	p.log.DebugObj("sns broadcast event", "publisher_sns_delivery", map[string]any{
		"publisher_id": p.id,
		"event_type":   evt.Type,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
