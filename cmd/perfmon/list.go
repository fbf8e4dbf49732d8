package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dylandreimerink/perfmon/events"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the generic event names and the PMUs of this system",
		RunE:  list,
	}
}

func list(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Generic events:")
	for _, name := range events.Names() {
		fmt.Fprintf(out, "  %s\n", name)
	}

	enc := events.NewEncoder()
	if err := enc.Initialize(); err != nil {
		return fmt.Errorf("initialize encoder: %w", err)
	}

	fmt.Fprintln(out, "PMUs (use as pmu/term=value,.../):")
	for _, pmu := range enc.PMUs() {
		fmt.Fprintf(out, "  %s\n", pmu)
	}

	return nil
}
