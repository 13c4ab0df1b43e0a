package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// NotificationError reports a failed publish. Distinct from a query failure
// so the caller's own alerting can tell delivery problems apart.
type NotificationError struct {
	Subject string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("publish notification %q: %v", e.Subject, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// snsAPI is the subset of the SNS client we use.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes notifications to an SNS topic, which fans out to
// the subscribed email and HTTPS endpoints.
type SNSNotifier struct {
	client   snsAPI
	topicARN string
}

// NewSNSNotifier creates an SNS notifier from a resolved AWS config.
func NewSNSNotifier(cfg aws.Config, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// NewSNSNotifierFromAPI creates an SNS notifier from an existing API implementation.
func NewSNSNotifierFromAPI(api snsAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: api, topicARN: topicARN}
}

// Publish sends one notification to the topic. Fire-and-forget from the
// evaluator's perspective, but failures surface as *NotificationError.
func (s *SNSNotifier) Publish(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n.Body)
	if err != nil {
		return &NotificationError{Subject: n.Subject, Err: fmt.Errorf("marshal body: %w", err)}
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(n.Subject),
		Message:  aws.String(string(payload)),
	})
	if err != nil {
		return &NotificationError{Subject: n.Subject, Err: err}
	}

	return nil
}

// Close is a no-op; the SNS client holds no resources needing teardown.
func (s *SNSNotifier) Close() error { return nil }
