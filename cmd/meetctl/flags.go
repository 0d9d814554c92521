package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
)

// filterFlags selects a subset of the roster.
type filterFlags struct {
	sex      string
	category string
	class    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sex, "sex", "", "Only athletes of this sex (Female, Male)")
	cmd.Flags().StringVar(&f.category, "category", "", "Only athletes in this category")
	cmd.Flags().StringVar(&f.class, "class", "", "Only athletes in this weight class, e.g. 83kg")
}

func (f *filterFlags) filter() (ranking.Filter, error) {
	var out ranking.Filter
	if f.sex != "" {
		sex, err := model.ParseSex(f.sex)
		if err != nil {
			return out, fmt.Errorf("--sex: %w", err)
		}
		out.Sex = sex
	}
	if f.category != "" {
		cat, err := model.ParseCategory(f.category)
		if err != nil {
			return out, fmt.Errorf("--category: %w", err)
		}
		out.Category = cat
	}
	out.WeightClass = f.class
	return out, nil
}

// findAthlete resolves ref as an id, then as a case-sensitive name.
func findAthlete(athletes []model.Athlete, ref string) (model.Athlete, error) {
	for _, a := range athletes {
		if a.ID == ref {
			return a, nil
		}
	}
	var found []model.Athlete
	for _, a := range athletes {
		if a.Name == ref {
			found = append(found, a)
		}
	}
	switch len(found) {
	case 0:
		return model.Athlete{}, fmt.Errorf("no athlete %q in the selected field", ref)
	case 1:
		return found[0], nil
	default:
		return model.Athlete{}, fmt.Errorf("%d athletes named %q; use an id", len(found), ref)
	}
}
