package ranking

import "github.com/okian/liftboard/internal/domain/model"

// Filter narrows the field before ranking. Empty fields match everyone.
type Filter struct {
	Sex         model.Sex
	Category    model.Category
	WeightClass string
}

// Match reports whether an athlete passes the filter.
func (f Filter) Match(a model.Athlete) bool {
	if f.Sex != "" && a.Sex != f.Sex {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.WeightClass != "" && a.WeightClass != f.WeightClass {
		return false
	}
	return true
}

// Apply returns the matching athletes in input order.
func (f Filter) Apply(athletes []model.Athlete) []model.Athlete {
	out := make([]model.Athlete, 0, len(athletes))
	for _, a := range athletes {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}
