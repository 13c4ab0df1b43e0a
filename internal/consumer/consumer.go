// Package consumer delivers completion events from SQS to the evaluator.
//
// The queue is the invoking infrastructure: redelivery, backoff and
// dead-lettering are its redrive policy. The consumer deletes a message
// only after its evaluation finished without error; any evaluator error
// leaves the message in flight for redelivery.
package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"

	"github.com/yairfalse/driftwatch/internal/evaluator"
	"github.com/yairfalse/driftwatch/internal/event"
)

const receiveBackoff = time.Second

// Evaluator runs one evaluation per completion event.
type Evaluator interface {
	Evaluate(ctx context.Context, ev event.CompletionEvent) (evaluator.Result, error)
}

// sqsAPI is the subset of the SQS client we use.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Config holds consumer settings.
type Config struct {
	QueueURL  string
	WaitTime  time.Duration
	BatchSize int32

	// EvaluationTimeout bounds a single evaluation; both external calls are
	// low-latency API calls, so a few seconds is plenty. The abandoned
	// message redelivers per the queue's redrive policy.
	EvaluationTimeout time.Duration
}

// Consumer long-polls the queue and hands each message to the evaluator.
type Consumer struct {
	sqs    sqsAPI
	eval   Evaluator
	cfg    Config
	logger zerolog.Logger
}

// New creates a consumer from a resolved AWS config.
func New(awsCfg aws.Config, eval Evaluator, cfg Config, logger zerolog.Logger) *Consumer {
	return NewFromAPI(sqs.NewFromConfig(awsCfg), eval, cfg, logger)
}

// NewFromAPI creates a consumer from an existing SQS API implementation.
func NewFromAPI(api sqsAPI, eval Evaluator, cfg Config, logger zerolog.Logger) *Consumer {
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = 20 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.EvaluationTimeout <= 0 {
		cfg.EvaluationTimeout = 5 * time.Second
	}
	return &Consumer{sqs: api, eval: eval, cfg: cfg, logger: logger}
}

// Run polls until the context is cancelled. Receive failures are logged and
// retried after a short pause; evaluation failures never stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().
		Str("queue_url", c.cfg.QueueURL).
		Dur("wait_time", c.cfg.WaitTime).
		Int32("batch_size", c.cfg.BatchSize).
		Msg("consumer starting")

	for {
		if ctx.Err() != nil {
			return nil
		}

		out, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: c.cfg.BatchSize,
			WaitTimeSeconds:     int32(c.cfg.WaitTime.Seconds()),
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("receive failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveBackoff):
			}
			continue
		}

		for _, msg := range out.Messages {
			c.handle(ctx, msg)
		}
	}
}

// handle runs one evaluation for one message. Messages stay in flight on
// any error so the queue's redrive policy decides retries and dead-letters.
func (c *Consumer) handle(ctx context.Context, msg sqstypes.Message) {
	logger := c.logger.With().Str("message_id", aws.ToString(msg.MessageId)).Logger()

	ev, err := event.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		logger.Error().Err(err).Msg("malformed completion event, left for redrive policy")
		return
	}

	evalCtx, cancel := context.WithTimeout(ctx, c.cfg.EvaluationTimeout)
	defer cancel()

	if _, err := c.eval.Evaluate(evalCtx, ev); err != nil {
		logger.Error().Err(err).
			Str("stackset", ev.StackSetName).
			Str("operation_id", ev.OperationID).
			Msg("evaluation failed, message left for redelivery")
		return
	}

	if _, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		// Redelivery will re-evaluate; duplicate notifications are tolerated.
		logger.Warn().Err(err).Msg("delete failed after successful evaluation")
	}
}
