package event

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSEventPublisher struct {
	client SQSAPI
	logger *zap.Logger

	queueURL string
}

var (
	_ Publisher = (*SQSEventPublisher)(nil)
	_ Publisher = NopPublisher{}
)

func NewSQSEventPublisher(client SQSAPI, logger *zap.Logger, queueURL string) *SQSEventPublisher {
	return &SQSEventPublisher{
		client:   client,
		logger:   logger,
		queueURL: queueURL,
	}
}

func (p *SQSEventPublisher) Publish(ctx context.Context, e RunEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshalling payload")
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(payload)),
	}

	res, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}

	p.logger.Debug("published run event",
		zap.String("messageID", aws.StringValue(res.MessageId)),
		zap.String("job", e.JobName),
		zap.String("status", e.Status),
	)

	return nil
}
