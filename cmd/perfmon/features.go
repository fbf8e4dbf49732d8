package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dylandreimerink/perfmon/kernelsupport"
)

func featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Show the perf features of the running kernel",
		RunE:  features,
	}
}

func features(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	feat, err := kernelsupport.CurrentFeatures()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Kernel:   %s\n", feat.Release)
	fmt.Fprintf(out, "Perf:     %s\n", feat.Perf)

	level, err := kernelsupport.ParanoidLevel()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Paranoid: %d\n", level)

	return nil
}
