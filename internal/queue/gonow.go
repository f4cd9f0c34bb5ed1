// Package queue publishes go-now alerts to SQS for downstream notification
// workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"beachscore/internal/config"
	"beachscore/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// GoNowPublisher sends GoNowAlert messages to the go-now queue.
type GoNowPublisher struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewGoNowPublisher creates a publisher for the queue named in awsCfg.
func NewGoNowPublisher(client SQSSender, awsCfg config.AWSConfig, logger *slog.Logger) *GoNowPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoNowPublisher{
		client:   client,
		queueURL: awsCfg.GoNowQueueURL,
		logger:   logger,
	}
}

// Enabled reports whether a queue URL is configured.
func (p *GoNowPublisher) Enabled() bool {
	return p.queueURL != ""
}

// Publish serializes alert and sends it. A missing TraceID is filled in.
// The beach and window IDs travel as message attributes so consumers can
// filter without decoding the body.
func (p *GoNowPublisher) Publish(ctx context.Context, alert types.GoNowAlert) error {
	if !p.Enabled() {
		return fmt.Errorf("queue: go-now queue URL is not configured")
	}
	if alert.TraceID == "" {
		alert.TraceID = uuid.New().String()
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal GoNowAlert: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"beach_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.BeachID),
			},
			"window_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.WindowID),
			},
		},
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("queue: failed to send GoNowAlert for %s: %w", alert.BeachID, err)
	}

	p.logger.InfoContext(ctx, "go-now alert sent",
		"queue_url", p.queueURL,
		"beach_id", alert.BeachID,
		"window_id", alert.WindowID,
		"score", alert.Score,
		"trace_id", alert.TraceID,
	)
	return nil
}
