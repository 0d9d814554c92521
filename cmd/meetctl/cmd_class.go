package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/weightclass"
)

func newClassCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "class <sex> [bodyweight]",
		Short: "Show the weight classes for a sex, or the class a bodyweight falls in",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sex, err := model.ParseSex(args[0])
			if err != nil {
				return err
			}
			classes := weightclass.Default()
			if len(args) == 1 {
				labels := make([]string, 0, len(classes[sex]))
				for _, c := range classes[sex] {
					labels = append(labels, c.Label)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, " "))
				return err
			}

			kg, err := strconv.ParseFloat(args[1], 64)
			if err != nil || kg <= 0 {
				return fmt.Errorf("bodyweight must be a positive number, got %q", args[1])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), classes.Lookup(sex, model.FromKg(kg)))
			return err
		},
	}
}
