package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EvaluationMetrics holds operational metrics using OTEL semantic conventions.
type EvaluationMetrics struct {
	evaluations        metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	evaluationErrors   metric.Int64Counter
	notifications      metric.Int64Counter
}

// NewEvaluationMetrics creates evaluation metrics following OTEL semantic conventions.
func NewEvaluationMetrics() (*EvaluationMetrics, error) {
	meter := otel.Meter("driftwatch.evaluator")

	evaluations, err := meter.Int64Counter(
		"driftwatch.evaluations",
		metric.WithDescription("Number of completed drift-detection evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	evaluationDuration, err := meter.Float64Histogram(
		"driftwatch.evaluation.duration",
		metric.WithDescription("Duration of drift-detection evaluations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	evaluationErrors, err := meter.Int64Counter(
		"driftwatch.evaluation.errors",
		metric.WithDescription("Number of failed evaluations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	notifications, err := meter.Int64Counter(
		"driftwatch.notifications",
		metric.WithDescription("Number of notifications published"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, err
	}

	return &EvaluationMetrics{
		evaluations:        evaluations,
		evaluationDuration: evaluationDuration,
		evaluationErrors:   evaluationErrors,
		notifications:      notifications,
	}, nil
}

// RecordEvaluation records a completed evaluation with its classification.
func (m *EvaluationMetrics) RecordEvaluation(ctx context.Context, classification, stackSet string) {
	m.evaluations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("classification", classification),
			attribute.String("stackset", stackSet),
		),
	)
}

// RecordEvaluationDuration records how long an evaluation took.
func (m *EvaluationMetrics) RecordEvaluationDuration(ctx context.Context, durationSeconds float64, classification string) {
	m.evaluationDuration.Record(ctx, durationSeconds,
		metric.WithAttributes(
			attribute.String("classification", classification),
		),
	)
}

// RecordEvaluationError records a failed evaluation by error type.
func (m *EvaluationMetrics) RecordEvaluationError(ctx context.Context, errorType string) {
	m.evaluationErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.type", errorType),
		),
	)
}

// RecordNotification records a published notification.
func (m *EvaluationMetrics) RecordNotification(ctx context.Context, classification, stackSet string) {
	m.notifications.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("classification", classification),
			attribute.String("stackset", stackSet),
		),
	)
}
