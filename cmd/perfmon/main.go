package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

var flagLogLevel string

func rootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "perfmon",
		Short: "Inspect and exercise the perf counters used by libperfmon",
	}

	c.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	c.AddCommand(
		encodeCmd(),
		listCmd(),
		featuresCmd(),
		probeCmd(),
	)

	return c
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}
