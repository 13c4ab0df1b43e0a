// Package notify publishes evaluation outcomes to notification backends.
package notify

import (
	"context"
	"time"

	"github.com/yairfalse/driftwatch/internal/stackset"
)

// Body is the structured notification payload. It serializes with string
// enums and RFC3339 timestamps so every field survives JSON transport.
type Body struct {
	MessageID      string                    `json:"message_id"`
	StackSetName   string                    `json:"stackset_name"`
	OperationID    string                    `json:"operation_id"`
	Classification string                    `json:"classification"`
	EvaluatedAt    time.Time                 `json:"evaluated_at"`
	Operation      stackset.OperationDetails `json:"operation"`
}

// Notification is one outbound message. Duplicate publishes for the same
// operation are acceptable; consumers must tolerate them.
type Notification struct {
	Subject string
	Body    Body
}

// Notifier publishes notifications to a backend.
type Notifier interface {
	// Publish sends one notification.
	Publish(ctx context.Context, n Notification) error

	// Close cleans up resources.
	Close() error
}

// MultiNotifier fans out to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to multiple backends.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Publish sends to all notifiers, returns first error.
func (m *MultiNotifier) Publish(ctx context.Context, n Notification) error {
	for _, notifier := range m.notifiers {
		if err := notifier.Publish(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all notifiers.
func (m *MultiNotifier) Close() error {
	for _, notifier := range m.notifiers {
		if err := notifier.Close(); err != nil {
			return err
		}
	}
	return nil
}
