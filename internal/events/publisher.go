// Package events publishes order and account events to an SQS queue.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"storefront/internal/domain"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	TypeOrderPlaced            = "order.placed"
	TypePasswordResetRequested = "account.password_reset_requested"
)

// SQSAPI is the subset of the SQS client the publisher needs.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// OrderPlaced is the message body sent for every accepted order.
type OrderPlaced struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Lines      int       `json:"lines"`
	Units      int       `json:"units"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PasswordResetRequested carries a reset token to the mail worker.
type PasswordResetRequested struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	sqs      SQSAPI
	queueURL string
	logger   *log.Logger
	now      func() time.Time
}

func NewPublisher(client SQSAPI, queueURL string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Publisher{sqs: client, queueURL: queueURL, logger: logger, now: time.Now}
}

// NewSQSClient loads the default AWS config for region.
func NewSQSClient(ctx context.Context, region string) (*sqs.Client, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

// PublishOrderPlaced sends an order.placed event for o.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, o domain.Order) error {
	units := 0
	for _, it := range o.Items {
		units += it.Quantity
	}
	body, err := json.Marshal(OrderPlaced{
		Type:       TypeOrderPlaced,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Lines:      len(o.Items),
		Units:      units,
		Total:      o.Total.StringFixed(2),
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.send(ctx, TypeOrderPlaced, "order_id", o.ID, body)
}

// PublishPasswordReset sends an account.password_reset_requested event.
func (p *Publisher) PublishPasswordReset(ctx context.Context, userID, email, token string, expiresAt time.Time) error {
	body, err := json.Marshal(PasswordResetRequested{
		Type:       TypePasswordResetRequested,
		UserID:     userID,
		Email:      email,
		Token:      token,
		ExpiresAt:  expiresAt.UTC(),
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.send(ctx, TypePasswordResetRequested, "user_id", userID, body)
}

func (p *Publisher) send(ctx context.Context, eventType, idAttr, id string, body []byte) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(p.queueURL),
		MessageBody: sdkaws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {DataType: sdkaws.String("String"), StringValue: sdkaws.String(eventType)},
			idAttr:       {DataType: sdkaws.String("String"), StringValue: sdkaws.String(id)},
		},
	}
	out, err := p.sqs.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	p.logger.Printf("events: published type=%s %s=%s message_id=%s", eventType, idAttr, id, sdkaws.ToString(out.MessageId))
	return nil
}
