package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/internal/stackset"
)

var triggerTimeout time.Duration

// triggerCmd represents the trigger command
var triggerCmd = &cobra.Command{
	Use:   "trigger [stackset...]",
	Short: "Start drift detection for StackSets",
	Long: `Start a drift-detection operation for each named StackSet.

With no arguments, every StackSet listed in the config file is
triggered. Detection runs asynchronously; each operation's completion
event is evaluated by the serve consumer. Run this from your scheduler
of choice (cron, EventBridge Scheduler) for periodic checks.`,
	Example: `  driftwatch trigger                     # Trigger all configured StackSets
  driftwatch trigger core-networking     # Trigger one StackSet`,
	RunE: runTrigger,
}

func init() {
	rootCmd.AddCommand(triggerCmd)

	triggerCmd.Flags().DurationVar(&triggerTimeout, "timeout", 30*time.Second, "Overall trigger timeout")
}

func runTrigger(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	stackSets := args
	if len(stackSets) == 0 {
		stackSets = cfg.StackSets
	}
	if len(stackSets) == 0 {
		return fmt.Errorf("no stacksets to trigger (config or arguments)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	client := stackset.NewClient(awsCfg)
	prefs := stackset.DriftPreferences{
		RegionConcurrency:  cfg.Drift.RegionConcurrency,
		MaxConcurrentCount: cfg.Drift.MaxConcurrentCount,
		ConcurrencyMode:    cfg.Drift.ConcurrencyMode,
	}

	var failures int
	for _, name := range stackSets {
		opID, err := client.DetectDrift(ctx, name, prefs)
		if err != nil {
			failures++
			logger.Error().Err(err).Str("stackset", name).Msg("trigger failed")
			continue
		}
		logger.Info().
			Str("stackset", name).
			Str("operation_id", opID).
			Msg("drift detection started")
	}

	if failures > 0 {
		return fmt.Errorf("failed to trigger %d of %d stacksets", failures, len(stackSets))
	}
	return nil
}
