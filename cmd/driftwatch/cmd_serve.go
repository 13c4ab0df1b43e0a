package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/internal/consumer"
	"github.com/yairfalse/driftwatch/internal/evaluator"
	"github.com/yairfalse/driftwatch/internal/notify"
	"github.com/yairfalse/driftwatch/internal/stackset"
	"github.com/yairfalse/driftwatch/telemetry"
)

var (
	serveMetricsAddr string
	serveQueueURL    string
	serveDryRun      bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the completion-event consumer",
	Long: `Run the Driftwatch consumer.

The consumer long-polls an SQS queue subscribed to CloudFormation
StackSet operation status-change events, evaluates each completed
drift-detection operation, and publishes a notification to the SNS
topic for every failed, drifted or indeterminate outcome.

Messages are deleted only after a successful evaluation; the queue's
redrive policy owns retries and dead-lettering.`,
	Example: `  driftwatch serve                         # Consume using config defaults
  driftwatch serve --metrics-addr :9090    # Custom metrics address
  driftwatch serve --dry-run               # Log notifications instead of publishing`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", ":2112", "Metrics HTTP server address")
	serveCmd.Flags().StringVar(&serveQueueURL, "queue-url", "", "SQS queue URL (overrides config)")
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "Log notifications instead of publishing to SNS")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	queueURL := cfg.QueueURL
	if serveQueueURL != "" {
		queueURL = serveQueueURL
	}
	if queueURL == "" {
		return fmt.Errorf("queue_url is required for serve (config or --queue-url)")
	}

	ctx := context.Background()

	provider, err := telemetry.NewProvider(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	metrics, err := telemetry.NewEvaluationMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	var notifier notify.Notifier = notify.NewSNSNotifier(awsCfg, cfg.TopicARN)
	if serveDryRun {
		notifier = notify.NewLogNotifier(logger.Logger)
	}
	defer func() { _ = notifier.Close() }()

	eval := evaluator.New(
		stackset.NewClient(awsCfg),
		notifier,
		evaluator.WithMetrics(metrics),
		evaluator.WithLogger(logger.Logger),
	)

	cons := consumer.New(awsCfg, eval, consumer.Config{QueueURL: queueURL}, logger.Logger)

	logger.Info().
		Str("region", cfg.Region).
		Str("queue_url", queueURL).
		Str("topic_arn", cfg.TopicARN).
		Str("metrics_addr", serveMetricsAddr).
		Bool("dry_run", serveDryRun).
		Msg("driftwatch starting")

	var g run.Group

	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	consumerCtx, consumerCancel := context.WithCancel(ctx)
	g.Add(func() error {
		return cons.Run(consumerCtx)
	}, func(error) {
		consumerCancel()
	})

	srv := metricsServer(serveMetricsAddr)
	g.Add(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	err = g.Run()

	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		logger.Info().Str("signal", sigErr.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
