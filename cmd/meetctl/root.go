package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/liftboard/pkg/logger"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meetctl",
		Short: "Rank and analyse powerlifting meet files",
		Long: `meetctl reads a YAML meet file and prints leaderboards, strategy
answers and weight classes without a running server.`,
		Version:      version,
		SilenceUsage: true,
	}

	debug := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
			return err
		}
		if *debug {
			return logger.SetLevelString("debug")
		}
		return logger.SetLevelString("warn")
	}

	cmd.AddCommand(newRankCommand())
	cmd.AddCommand(newSolveCommand())
	cmd.AddCommand(newWatchCommand())
	cmd.AddCommand(newClassCommand())
	return cmd
}
