package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/meetfile"
	"github.com/okian/liftboard/pkg/logger"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

func newWatchCommand() *cobra.Command {
	opts := &rankOptions{}
	var noClear bool
	cmd := &cobra.Command{
		Use:   "watch <meet.yaml>",
		Short: "Re-print the leaderboard whenever the meet file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			draw := func(m model.Meet) error {
				if !noClear {
					if _, err := io.WriteString(out, clearScreen); err != nil {
						return err
					}
				}
				return opts.render(out, m)
			}

			m, err := meetfile.Load(path)
			if err != nil {
				return err
			}
			if err := draw(m); err != nil {
				return err
			}

			ctx := cmd.Context()
			log := logger.Get().Named("meetctl")
			return meetfile.Watch(ctx, path, func(m model.Meet, err error) {
				if err != nil {
					// Keep the last good board on screen.
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					return
				}
				if err := draw(m); err != nil {
					log.Error(ctx, "render failed", logger.Error(err))
				}
			})
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Append each board instead of clearing the screen")
	return cmd
}
