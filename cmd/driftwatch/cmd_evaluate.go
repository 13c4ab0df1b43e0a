package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/internal/evaluator"
	"github.com/yairfalse/driftwatch/internal/event"
	"github.com/yairfalse/driftwatch/internal/notify"
	"github.com/yairfalse/driftwatch/internal/stackset"
)

var (
	evaluateEventPath string
	evaluateDryRun    bool
	evaluateTimeout   time.Duration
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single completion event",
	Long: `Evaluate one StackSet operation status-change event.

Reads the raw EventBridge event from a file (or stdin with --event -),
fetches the operation's authoritative details, classifies the outcome
and publishes a notification for any non-clean classification. The
result is printed as JSON. Exits non-zero on a malformed event, a
failed status lookup, or a failed publish.`,
	Example: `  driftwatch evaluate --event completion.json
  cat completion.json | driftwatch evaluate --event -
  driftwatch evaluate --event completion.json --dry-run`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateEventPath, "event", "", "Path to the raw event payload, or - for stdin")
	evaluateCmd.Flags().BoolVar(&evaluateDryRun, "dry-run", false, "Log the notification instead of publishing to SNS")
	evaluateCmd.Flags().DurationVar(&evaluateTimeout, "timeout", 5*time.Second, "Evaluation timeout")
	_ = evaluateCmd.MarkFlagRequired("event")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := readEventPayload(evaluateEventPath)
	if err != nil {
		return err
	}

	ev, err := event.Parse(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	var notifier notify.Notifier = notify.NewSNSNotifier(awsCfg, cfg.TopicARN)
	if evaluateDryRun {
		notifier = notify.NewLogNotifier(logger.Logger)
	}
	defer func() { _ = notifier.Close() }()

	eval := evaluator.New(
		stackset.NewClient(awsCfg),
		notifier,
		evaluator.WithLogger(logger.Logger),
	)

	result, err := eval.Evaluate(ctx, ev)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}

func readEventPayload(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	return data, nil
}
