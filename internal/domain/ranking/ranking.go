// Package ranking orders athletes into a leaderboard.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
)

// Entry is a derived leaderboard row. Entries are rebuilt on every call and
// never stored.
type Entry struct {
	Place       int
	AthleteID   string
	Name        string
	Sex         model.Sex
	Category    model.Category
	WeightClass string
	Bodyweight  model.Weight
	Bests       [3]model.Weight
	Total       model.Weight
	Score       float64
}

// Best returns the entry's best for a lift.
func (e Entry) Best(l model.Lift) model.Weight {
	if !l.Valid() {
		return 0
	}
	return e.Bests[l]
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithScorer sets the scorer used for normalized scores.
func WithScorer(s *scoring.Scorer) Option {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// Ranker builds leaderboards. It is stateless and safe for concurrent use.
type Ranker struct {
	scorer *scoring.Scorer
}

// New creates a ranker with the default scorer.
func New(opts ...Option) *Ranker {
	r := &Ranker{scorer: scoring.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRanker = New()

// Rank orders athletes with the default ranker.
func Rank(athletes []model.Athlete, view model.View, metric scoring.Metric) []Entry {
	return defaultRanker.Rank(athletes, view, metric)
}

type keyed struct {
	entry     Entry
	primary   scoring.Points
	secondary scoring.Points
}

// Rank orders athletes for a view. A lift view sorts on that lift's best; the
// total view sorts on the chosen metric and then on the other one. Remaining
// ties go to the lighter athlete and then keep input order.
func (r *Ranker) Rank(athletes []model.Athlete, view model.View, metric scoring.Metric) []Entry {
	rows := make([]keyed, 0, len(athletes))
	for _, a := range athletes {
		row := keyed{entry: r.entry(a)}
		e := row.entry
		if l, ok := view.Lift(); ok {
			row.primary = scoring.Points(e.Bests[l])
		} else {
			row.primary = r.scorer.Points(metric, e.Total, e.Bodyweight)
			row.secondary = r.scorer.Points(metric.Other(), e.Total, e.Bodyweight)
		}
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		if c := cmp.Compare(b.primary, a.primary); c != 0 {
			return c
		}
		if c := cmp.Compare(b.secondary, a.secondary); c != 0 {
			return c
		}
		return cmp.Compare(a.entry.Bodyweight, b.entry.Bodyweight)
	})

	out := make([]Entry, len(rows))
	for i, row := range rows {
		row.entry.Place = i + 1
		out[i] = row.entry
	}
	return out
}

func (r *Ranker) entry(a model.Athlete) Entry {
	sum := r.scorer.Summarize(a)
	return Entry{
		AthleteID:   a.ID,
		Name:        a.Name,
		Sex:         a.Sex,
		Category:    a.Category,
		WeightClass: a.WeightClass,
		Bodyweight:  a.Bodyweight,
		Bests:       sum.Bests,
		Total:       sum.Total,
		Score:       sum.Score,
	}
}
