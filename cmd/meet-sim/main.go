// Command meet-sim drives a running liftboard server through a simulated meet
// and fails when a served leaderboard disagrees with a local ranking.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/meetsim"
	"github.com/okian/liftboard/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cfg := meetsim.Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "meet-sim",
		Short: "Simulate a meet against a liftboard server",
		Example: `  meet-sim
  meet-sim --url http://localhost:8080 --athletes 200 --workers 16
  meet-sim --seed 42 --output sim.yaml --verbose`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				if err := logger.SetLevelString("debug"); err != nil {
					return err
				}
			}
			stats, err := meetsim.Run(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("simulation failed after %d events: %w", stats.EventsSubmitted, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d athletes, %d events (%d duplicate) in %s\n",
				stats.AthletesCreated, stats.EventsSubmitted, stats.EventsDuplicate, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", meetsim.DefaultBaseURL, "Base URL of the service")
	f.IntVar(&cfg.Athletes, "athletes", meetsim.DefaultAthletes, "Number of athletes to enter")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent event submitters")
	f.DurationVar(&cfg.Timeout, "timeout", meetsim.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&cfg.Settle, "settle", meetsim.DefaultSettle, "How long to wait for leaderboards to converge")
	f.Float64Var(&cfg.DupRate, "dup-rate", meetsim.DefaultDupRate, "Fraction of events resubmitted as duplicates")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Generator seed (0 picks one from the clock)")
	f.StringVar(&cfg.OutputFile, "output", "", "Write the simulated meet to this YAML file")
	f.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	f.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	return cmd
}
