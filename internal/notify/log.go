package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the log instead of publishing them.
// Used by dry-run mode.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Publish logs the notification at warn level.
func (l *LogNotifier) Publish(ctx context.Context, n Notification) error {
	l.logger.Warn().
		Ctx(ctx).
		Str("subject", n.Subject).
		Str("stackset", n.Body.StackSetName).
		Str("operation_id", n.Body.OperationID).
		Str("classification", n.Body.Classification).
		Interface("operation", n.Body.Operation).
		Msg("notification (dry-run, not published)")
	return nil
}

// Close is a no-op.
func (l *LogNotifier) Close() error { return nil }
