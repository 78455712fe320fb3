package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"field_mates_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the part of the SQS client used by SQSPusher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPusher publishes notifications as JSON messages on an SQS queue.
type SQSPusher struct {
	Client   SQSAPI
	QueueURL string
}

func (p *SQSPusher) Push(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification to JSON: %w", err)
	}

	_, err = p.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"recordType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.RecordType),
			},
			"contentAvailable": {
				DataType:    aws.String("String"),
				StringValue: aws.String(strconv.FormatBool(n.ContentAvailable)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to SQS: %w", err)
	}
	return nil
}

// InitializeSQSClient creates an SQS client. A non-empty endpoint points the
// client at a local or emulated queue.
func InitializeSQSClient(cfg aws.Config, endpoint string) *sqs.Client {
	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
