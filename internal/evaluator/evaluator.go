// Package evaluator classifies completed StackSet drift-detection
// operations and decides what to notify.
package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yairfalse/driftwatch/internal/event"
	"github.com/yairfalse/driftwatch/internal/notify"
	"github.com/yairfalse/driftwatch/internal/stackset"
	"github.com/yairfalse/driftwatch/telemetry"
)

// StatusFetcher retrieves the authoritative record of a StackSet operation.
type StatusFetcher interface {
	DescribeOperation(ctx context.Context, stackSetName, operationID string) (stackset.OperationDetails, error)
}

// Result is the outcome of one evaluation.
type Result struct {
	Classification Classification            `json:"classification"`
	Notified       bool                      `json:"notified"`
	Operation      stackset.OperationDetails `json:"operation"`
}

// Evaluator runs one evaluation per completion event: fetch operation
// details, classify, and publish a notification for non-clean outcomes.
// Stateless across invocations; the injected clients are long-lived and
// safe to share.
type Evaluator struct {
	fetcher  StatusFetcher
	notifier notify.Notifier
	metrics  *telemetry.EvaluationMetrics
	logger   zerolog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMetrics attaches evaluation metrics.
func WithMetrics(m *telemetry.EvaluationMetrics) Option {
	return func(e *Evaluator) { e.metrics = m }
}

// WithLogger sets the evaluator logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// New creates an evaluator.
func New(fetcher StatusFetcher, notifier notify.Notifier, opts ...Option) *Evaluator {
	e := &Evaluator{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate processes one completion event. Query and publish failures
// surface to the caller; redelivery is the caller's policy, never ours.
func (e *Evaluator) Evaluate(ctx context.Context, ev event.CompletionEvent) (Result, error) {
	start := time.Now()
	logger := e.logger.With().
		Str("stackset", ev.StackSetName).
		Str("operation_id", ev.OperationID).
		Logger()

	logger.Info().Ctx(ctx).Msg("fetching stackset operation details")

	op, err := e.fetcher.DescribeOperation(ctx, ev.StackSetName, ev.OperationID)
	if err != nil {
		e.recordError(ctx, "query")
		return Result{}, err
	}

	if !op.Status.Terminal() {
		// Completion events should only arrive for terminal operations.
		logger.Warn().Ctx(ctx).
			Str("operation_status", string(op.Status)).
			Msg("operation is not in a terminal state")
	}

	classification := Classify(op)
	e.logClassification(ctx, logger, classification, op)

	result := Result{Classification: classification, Operation: op}
	if !classification.Notifies() {
		e.recordEvaluation(ctx, classification, ev.StackSetName, time.Since(start))
		return result, nil
	}

	notification := e.buildNotification(ev, classification, op)
	if err := e.notifier.Publish(ctx, notification); err != nil {
		e.recordError(ctx, "notification")
		return Result{}, err
	}
	result.Notified = true

	if e.metrics != nil {
		e.metrics.RecordNotification(ctx, string(classification), ev.StackSetName)
	}
	e.recordEvaluation(ctx, classification, ev.StackSetName, time.Since(start))

	return result, nil
}

func (e *Evaluator) buildNotification(ev event.CompletionEvent, classification Classification, op stackset.OperationDetails) notify.Notification {
	return notify.Notification{
		Subject: Subject(classification, ev.StackSetName),
		Body: notify.Body{
			MessageID:      uuid.NewString(),
			StackSetName:   ev.StackSetName,
			OperationID:    ev.OperationID,
			Classification: string(classification),
			EvaluatedAt:    time.Now().UTC(),
			Operation:      op,
		},
	}
}

// Subject renders the notification subject line for a classification.
func Subject(classification Classification, stackSetName string) string {
	switch classification {
	case ClassificationOperationFailed:
		return fmt.Sprintf("ERROR: StackSet %s drift detection failed", stackSetName)
	case ClassificationDriftDetected:
		return fmt.Sprintf("DRIFTED: StackSet %s is in the drifted state", stackSetName)
	default:
		return fmt.Sprintf("INDETERMINATE: StackSet %s drift detection returned no drift details", stackSetName)
	}
}

func (e *Evaluator) logClassification(ctx context.Context, logger zerolog.Logger, classification Classification, op stackset.OperationDetails) {
	switch classification {
	case ClassificationOperationFailed:
		evt := logger.Error().Ctx(ctx).
			Str("operation_status", string(op.Status)).
			Str("status_reason", op.StatusReason).
			Str("drift_status", string(op.DriftStatusOrEmpty()))
		if op.StatusDetails != nil {
			evt = evt.Int32("failed_stack_instances", op.StatusDetails.FailedInstances)
		}
		evt.Msg("operation did not complete successfully")

	case ClassificationDriftDetected:
		logger.Error().Ctx(ctx).
			Str("drift_status", string(op.DriftDetails.DriftStatus)).
			Str("drift_detection_status", op.DriftDetails.DriftDetectionStatus).
			Int32("total_stack_instances", op.DriftDetails.TotalInstances).
			Int32("drifted_stack_instances", op.DriftDetails.DriftedInstances).
			Msg("stackset drift status is not in sync")

	case ClassificationIndeterminate:
		logger.Error().Ctx(ctx).
			Str("operation_status", string(op.Status)).
			Str("action", op.Action).
			Msg("operation carries no drift status, outcome is indeterminate")

	default:
		logger.Info().Ctx(ctx).
			Msg("drift detection completed, all stack instances in sync")
	}
}

func (e *Evaluator) recordEvaluation(ctx context.Context, classification Classification, stackSet string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordEvaluation(ctx, string(classification), stackSet)
	e.metrics.RecordEvaluationDuration(ctx, elapsed.Seconds(), string(classification))
}

func (e *Evaluator) recordError(ctx context.Context, errorType string) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordEvaluationError(ctx, errorType)
}
