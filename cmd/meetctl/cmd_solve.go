package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/strategy"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/internal/meetfile"
)

type solveOptions struct {
	athlete    string
	target     string
	focus      string
	scoring    string
	format     string
	step       float64
	totalCap   float64
	attemptCap float64
	filterFlags
}

func newSolveCommand() *cobra.Command {
	opts := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve <meet.yaml>",
		Short: "Find the smallest increase that puts an athlete ahead of a target",
		Long: `Solve searches attempt increases for the athlete until they beat the
target under the chosen scoring. Athletes are given by id or by name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.athlete, "athlete", "", "Athlete id or name")
	cmd.Flags().StringVar(&opts.target, "target", "", "Target athlete id or name")
	cmd.Flags().StringVar(&opts.focus, "focus", "total", "What may change: total, squat, bench or deadlift")
	cmd.Flags().StringVar(&opts.scoring, "scoring", "total", "Scoring: total or gl")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().Float64Var(&opts.step, "step", strategy.DefaultStepKg, "Search increment in kg")
	cmd.Flags().Float64Var(&opts.totalCap, "total-cap", strategy.DefaultAdditionCap, "Largest total increase searched in kg")
	cmd.Flags().Float64Var(&opts.attemptCap, "attempt-cap", strategy.DefaultAttemptCapKg, "Heaviest attempt searched in kg")
	opts.filterFlags.register(cmd)
	_ = cmd.MarkFlagRequired("athlete")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runSolve(cmd *cobra.Command, path string, opts *solveOptions) error {
	if opts.format != "table" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", opts.format)
	}
	focus, err := model.ParseView(opts.focus)
	if err != nil {
		return fmt.Errorf("--focus: %w", err)
	}
	metric, err := scoring.ParseMetric(opts.scoring)
	if err != nil {
		return fmt.Errorf("--scoring: %w", err)
	}
	f, err := opts.filter()
	if err != nil {
		return err
	}
	m, err := meetfile.Load(path)
	if err != nil {
		return err
	}

	field := f.Apply(m.Athletes)
	athlete, err := findAthlete(field, opts.athlete)
	if err != nil {
		return fmt.Errorf("--athlete: %w", err)
	}
	target, err := findAthlete(field, opts.target)
	if err != nil {
		return fmt.Errorf("--target: %w", err)
	}

	solver := strategy.New(
		strategy.WithStep(opts.step),
		strategy.WithAdditionCap(opts.totalCap),
		strategy.WithAttemptCap(opts.attemptCap),
	)
	res := solver.Solve(field, strategy.Request{
		AthleteID: athlete.ID,
		TargetID:  target.ID,
		Focus:     focus,
		Scoring:   metric,
	})

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(types.FromResult(res))
	}
	_, err = fmt.Fprintf(out, "%s vs %s (%s, %s)\n%s  %s\n",
		athlete.Name, target.Name, focus.Label(), metric.String(), res.Display(), res.Note)
	return err
}
