package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/driftwatch/internal/stackset"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

func sampleNotification() Notification {
	return Notification{
		Subject: "DRIFTED: StackSet core-networking is in the drifted state",
		Body: Body{
			MessageID:      "11111111-2222-3333-4444-555555555555",
			StackSetName:   "core-networking",
			OperationID:    "op-1",
			Classification: "DRIFT_DETECTED",
			EvaluatedAt:    time.Date(2026, 8, 25, 6, 0, 0, 0, time.UTC),
			Operation: stackset.OperationDetails{
				OperationID: "op-1",
				Status:      stackset.StatusSucceeded,
				DriftDetails: &stackset.DriftDetails{
					DriftStatus:      stackset.DriftStatusDrifted,
					TotalInstances:   10,
					DriftedInstances: 2,
				},
			},
		},
	}
}

func TestSNSNotifier_Publish(t *testing.T) {
	fake := &fakeSNS{}
	notifier := NewSNSNotifierFromAPI(fake, "arn:aws:sns:us-east-1:123456789012:drift")

	err := notifier.Publish(context.Background(), sampleNotification())
	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:drift", aws.ToString(in.TopicArn))
	assert.Equal(t, "DRIFTED: StackSet core-networking is in the drifted state", aws.ToString(in.Subject))

	// The message body must be a complete, decodable serialization.
	var body Body
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.Message)), &body))
	assert.Equal(t, "core-networking", body.StackSetName)
	assert.Equal(t, "DRIFT_DETECTED", body.Classification)
	require.NotNil(t, body.Operation.DriftDetails)
	assert.Equal(t, stackset.DriftStatusDrifted, body.Operation.DriftDetails.DriftStatus)
}

func TestSNSNotifier_PublishError(t *testing.T) {
	fake := &fakeSNS{err: errors.New("access denied")}
	notifier := NewSNSNotifierFromAPI(fake, "arn:aws:sns:us-east-1:123456789012:drift")

	err := notifier.Publish(context.Background(), sampleNotification())
	require.Error(t, err)

	var nerr *NotificationError
	require.True(t, errors.As(err, &nerr))
	assert.Contains(t, nerr.Error(), "access denied")
	assert.Contains(t, nerr.Subject, "core-networking")
}

func TestSNSNotifier_NoDeduplication(t *testing.T) {
	fake := &fakeSNS{}
	notifier := NewSNSNotifierFromAPI(fake, "arn:aws:sns:us-east-1:123456789012:drift")

	n := sampleNotification()
	require.NoError(t, notifier.Publish(context.Background(), n))
	require.NoError(t, notifier.Publish(context.Background(), n))

	// Duplicate delivery yields duplicate publishes; no hidden state.
	assert.Len(t, fake.inputs, 2)
}

func TestMultiNotifier(t *testing.T) {
	first := &fakeSNS{}
	second := &fakeSNS{}
	multi := NewMultiNotifier(
		NewSNSNotifierFromAPI(first, "arn:one"),
		NewSNSNotifierFromAPI(second, "arn:two"),
	)

	require.NoError(t, multi.Publish(context.Background(), sampleNotification()))
	assert.Len(t, first.inputs, 1)
	assert.Len(t, second.inputs, 1)
	assert.NoError(t, multi.Close())
}

func TestMultiNotifier_FirstErrorWins(t *testing.T) {
	failing := &fakeSNS{err: errors.New("boom")}
	second := &fakeSNS{}
	multi := NewMultiNotifier(
		NewSNSNotifierFromAPI(failing, "arn:one"),
		NewSNSNotifierFromAPI(second, "arn:two"),
	)

	err := multi.Publish(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.Empty(t, second.inputs)
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(zerolog.Nop())
	assert.NoError(t, notifier.Publish(context.Background(), sampleNotification()))
	assert.NoError(t, notifier.Close())
}
