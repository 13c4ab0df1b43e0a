package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yairfalse/driftwatch/config"
	"github.com/yairfalse/driftwatch/telemetry"
)

var (
	version    = "0.1.0"
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "driftwatch",
		Short: "StackSet drift detection watchdog",
		Long: `Driftwatch - StackSet Drift Detection Watchdog

Driftwatch watches CloudFormation StackSet drift-detection operations.
It triggers detection runs across your StackSets, evaluates each
operation's outcome when the completion event arrives, and notifies an
SNS topic whenever an operation failed or a StackSet drifted out of
sync with its template.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Driftwatch {{.Version}} - StackSet Drift Detection Watchdog
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "driftwatch.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// loadConfig reads the config file and builds the service logger.
func loadConfig() (*config.Config, *telemetry.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}

	return cfg, telemetry.NewLogger(cfg.OTEL.ServiceName, level), nil
}
