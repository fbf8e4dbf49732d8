package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dylandreimerink/perfmon"
	promadapter "github.com/dylandreimerink/perfmon/adapters/prometheus"
)

var (
	flagEvents []string
	flagRepeat int
	flagListen string
)

func probeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "probe [flags] -- {command} [args...]",
		Short: "Count events while running a command",
		Long: "Prepares the counters, then runs the command between begin and end. Counters are inherited by the " +
			"command. Events default to the PERF_EVENTS environment variable and PERFMON_CONFIG.",
		Args: cobra.MinimumNArgs(1),
		RunE: probe,
	}

	f := c.Flags()
	f.StringSliceVarP(&flagEvents, "events", "e", nil, "Events to count, overrides PERF_EVENTS")
	f.IntVarP(&flagRepeat, "repeat", "r", 1, "Amount of times to run the command")
	f.StringVar(&flagListen, "listen", "", "If set, serve the results as prometheus metrics on this address "+
		"after all runs completed, until interrupted")

	return c
}

func probe(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	log, err := newLogger()
	if err != nil {
		return err
	}

	cfg, err := perfmon.LoadConfig()
	if err != nil {
		return err
	}
	if len(flagEvents) > 0 {
		cfg.Events = flagEvents
	}

	reg := prometheus.NewRegistry()
	session := perfmon.NewSession(cfg,
		perfmon.WithLogger(log),
		perfmon.WithMetrics(promadapter.NewMetrics(reg)),
	)
	defer session.Close()

	if err = session.Prepare(); err != nil {
		return err
	}

	for i := 0; i < flagRepeat; i++ {
		child := exec.Command(args[0], args[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = os.Stdout
		child.Stderr = os.Stderr

		if err = session.Begin(); err != nil {
			return err
		}

		runErr := child.Run()

		if _, err = session.End(); err != nil {
			return err
		}

		var exitErr *exec.ExitError
		if runErr != nil && !errors.As(runErr, &exitErr) {
			return fmt.Errorf("run %s: %w", strings.Join(args, " "), runErr)
		}
	}

	out := cmd.ErrOrStderr()
	for _, res := range session.Results() {
		if res.Undefined() {
			fmt.Fprintf(out, "%s = NaN\n", res.Name)
			continue
		}
		fmt.Fprintf(out, "%s = %d\n", res.Name, res.Value)
	}

	if flagListen == "" {
		return nil
	}

	return serveMetrics(cmd.Context(), reg)
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: flagListen, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	fmt.Fprintf(os.Stderr, "serving metrics on http://%s/metrics\n", flagListen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
