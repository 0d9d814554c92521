package strategy

import (
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
)

// Default search bounds in kilograms.
const (
	DefaultStepKg       = 2.5
	DefaultAdditionCap  = 200
	DefaultAttemptCapKg = 500
)

// Option applies a configuration option to the Solver.
type Option func(*Solver)

// WithStep sets the search increment, the smallest attempt change a
// platform allows.
func WithStep(kg float64) Option {
	return func(s *Solver) {
		if w := model.FromKg(kg); w > 0 {
			s.step = w
		}
	}
}

// WithAdditionCap bounds the total-focus search.
func WithAdditionCap(kg float64) Option {
	return func(s *Solver) {
		if w := model.FromKg(kg); w > 0 {
			s.additionCap = w
		}
	}
}

// WithAttemptCap bounds the lift-focus search.
func WithAttemptCap(kg float64) Option {
	return func(s *Solver) {
		if w := model.FromKg(kg); w > 0 {
			s.attemptCap = w
		}
	}
}

// WithScorer sets the scorer used for normalized scores.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Solver) {
		if sc != nil {
			s.scorer = sc
		}
	}
}
