package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/internal/meetfile"
)

// rankOptions holds the leaderboard flags shared by rank and watch.
type rankOptions struct {
	view   string
	metric string
	format string
	filterFlags
}

func (o *rankOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.view, "view", "total", "Leaderboard view: total, squat, bench or deadlift")
	cmd.Flags().StringVar(&o.metric, "metric", "total", "Total view ordering: total or gl")
	cmd.Flags().StringVarP(&o.format, "format", "f", "table", "Output format: table or json")
	o.filterFlags.register(cmd)
}

func (o *rankOptions) render(w io.Writer, m model.Meet) error {
	if o.format != "table" && o.format != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", o.format)
	}
	view, err := model.ParseView(o.view)
	if err != nil {
		return fmt.Errorf("--view: %w", err)
	}
	metric, err := scoring.ParseMetric(o.metric)
	if err != nil {
		return fmt.Errorf("--metric: %w", err)
	}
	f, err := o.filter()
	if err != nil {
		return err
	}

	entries := ranking.Rank(f.Apply(m.Athletes), view, metric)
	if o.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(types.Leaderboard{
			MeetID: m.ID,
			View:   view.String(),
			Metric: metric.String(),
			Rows:   types.FromEntries(entries),
		})
	}
	return writeLeaderboard(w, m.Name, entries, view, metric)
}

func newRankCommand() *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank <meet.yaml>",
		Short: "Print the leaderboard of a meet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := meetfile.Load(args[0])
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), m)
		},
	}
	opts.register(cmd)
	return cmd
}
