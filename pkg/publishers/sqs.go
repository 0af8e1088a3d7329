package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// queuePublisher enqueues user events on an SQS queue.
type queuePublisher struct {
	id       string
	queueURL string
	api      sqsAPI
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSAccess)
	if err != nil {
		return nil, err
	}
	endpoint := endpointOverride(cfg.SQS.AWSAccess)
	return &queuePublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		api:      sqs.NewFromConfig(awsCfg, func(o *sqs.Options) { o.BaseEndpoint = endpoint }),
		log:      orNop(log),
	}, nil
}

func (q *queuePublisher) ID() string   { return q.id }
func (q *queuePublisher) Type() string { return TypeSQS }

func (q *queuePublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newAWSMessage(evt)
	if err != nil {
		return err
	}
	attrs := make(map[string]types.MessageAttributeValue, len(msg.attrs))
	for name, value := range msg.attrs {
		attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(value)}
	}

	out, err := q.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(q.queueURL),
		MessageBody:       msg.body,
		MessageAttributes: attrs,
	})
	if err != nil {
		q.log.ErrorObj("sqs enqueue failed", "publisher_sqs_error", map[string]any{
			"publisher_id": q.id,
			"event_type":   evt.Type,
			"error":        err.Error(),
		})
		return fmt.Errorf("enqueue %s: %w", evt.Type, err)
	}
	q.log.DebugObj("sqs enqueued event", "publisher_sqs_delivery", map[string]any{
		"publisher_id": q.id,
		"event_type":   evt.Type,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
