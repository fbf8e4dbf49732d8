package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dylandreimerink/perfmon/events"
	"github.com/dylandreimerink/perfmon/perf"
)

var flagPrivilegeLevel string

func encodeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "encode {event name} [event name...]",
		Short: "Show the perf attribute an event name is encoded into",
		Args:  cobra.MinimumNArgs(1),
		RunE:  encode,
	}

	c.Flags().StringVar(&flagPrivilegeLevel, "privilege-level", "user", "One of: user, kernel, user+kernel, all")

	return c
}

func encode(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	plm, err := events.ParsePLM(flagPrivilegeLevel)
	if err != nil {
		return err
	}

	enc := events.NewEncoder()
	if err = enc.Initialize(); err != nil {
		return fmt.Errorf("initialize encoder: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		var attr perf.Attr
		if err = enc.Encode(name, plm, &attr); err != nil {
			return fmt.Errorf("encode '%s': %w", name, err)
		}

		fmt.Fprintf(out, "%s\n", name)
		fmt.Fprintf(out, "  type:    %s (%d)\n", attr.Type, attr.Type)
		fmt.Fprintf(out, "  config:  0x%x\n", attr.Config)
		if attr.Config1 != 0 || attr.Config2 != 0 {
			fmt.Fprintf(out, "  config1: 0x%x\n", attr.Config1)
			fmt.Fprintf(out, "  config2: 0x%x\n", attr.Config2)
		}
		fmt.Fprintf(out, "  exclude: %s\n", excludes(attr.AttrFlags))
	}

	return nil
}

func excludes(flags perf.AttrFlags) string {
	var s string
	for _, ex := range []struct {
		flag perf.AttrFlags
		name string
	}{
		{perf.AttrFlagsExcludeUser, "user"},
		{perf.AttrFlagsExcludeKernel, "kernel"},
		{perf.AttrFlagsExcludeHV, "hv"},
	} {
		if flags&ex.flag == 0 {
			continue
		}
		if s != "" {
			s += ","
		}
		s += ex.name
	}

	if s == "" {
		return "none"
	}
	return s
}
