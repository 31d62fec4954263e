package job

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/pkg/errors"
)

var NoErrEmptyRequests = errors.New("requests are empty")

type Poller interface {
	Poll(ctx context.Context) (receipt string, req Request, err error)
	MarkAsDone(ctx context.Context, receipt string) (err error)
}

type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type poller struct {
	client    SQSAPI
	validator *Validator
	queueURL  string
}

var _ Poller = (*poller)(nil)

func NewPoller(client SQSAPI, validator *Validator, queueURL string) *poller {
	return &poller{
		client:    client,
		validator: validator,
		queueURL:  queueURL,
	}
}

// Poll receives one request. A message that fails validation is returned
// with its receipt so that the caller can drop it.
func (p *poller) Poll(ctx context.Context) (receipt string, req Request, err error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(p.queueURL),
		MaxNumberOfMessages: 1,
	}

	result, err := p.client.ReceiveMessage(ctx, input)
	if err != nil {
		return "", Request{}, errors.Wrap(err, "receiving message")
	}

	if len(result.Messages) == 0 {
		return "", Request{}, NoErrEmptyRequests
	}

	msg := result.Messages[0]
	receipt = aws.StringValue(msg.ReceiptHandle)
	body := []byte(aws.StringValue(msg.Body))

	if err := p.validator.Validate(body); err != nil {
		return receipt, Request{}, err
	}

	var decoded Request
	if err := json.Unmarshal(body, &decoded); err != nil {
		return receipt, Request{}, errors.Wrap(err, "failed to unmarshal request")
	}

	return receipt, decoded, nil
}

func (p *poller) MarkAsDone(ctx context.Context, receipt string) (err error) {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.queueURL),
		ReceiptHandle: aws.String(receipt),
	}

	if _, err = p.client.DeleteMessage(ctx, input); err != nil {
		return errors.Wrap(err, "failed to delete message")
	}

	return nil
}
