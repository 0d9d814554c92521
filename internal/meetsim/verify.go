package meetsim

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/types"
)

const scoreEpsilon = 1e-9

// Board names one leaderboard query the simulation checks.
type Board struct {
	View   model.View
	Metric scoring.Metric
}

func (b Board) String() string {
	return b.View.String() + "/" + b.Metric.String()
}

// Boards returns every view with the raw metric plus the total view under GL.
func Boards() []Board {
	return []Board{
		{model.ViewTotal, scoring.MetricTotal},
		{model.ViewTotal, scoring.MetricNormalized},
		{model.ViewSquat, scoring.MetricTotal},
		{model.ViewBench, scoring.MetricTotal},
		{model.ViewDeadlift, scoring.MetricTotal},
	}
}

// Expected ranks the local meet the way the server should.
func Expected(m model.Meet, b Board) []types.Row {
	return types.FromEntries(ranking.Rank(m.Athletes, b.View, b.Metric))
}

// Verify compares a served board with the expected rows.
func Verify(want []types.Row, got types.Leaderboard) error {
	if len(want) != len(got.Rows) {
		return fmt.Errorf("%w: %d rows served, want %d", ErrMismatch, len(got.Rows), len(want))
	}
	var errs []error
	for i, w := range want {
		g := got.Rows[i]
		switch {
		case g.AthleteID != w.AthleteID:
			errs = append(errs, fmt.Errorf("place %d: athlete %s, want %s", i+1, g.AthleteID, w.AthleteID))
		case g.Place != w.Place:
			errs = append(errs, fmt.Errorf("athlete %s: place %d, want %d", w.AthleteID, g.Place, w.Place))
		case g.Total != w.Total:
			errs = append(errs, fmt.Errorf("athlete %s: total %.2f, want %.2f", w.AthleteID, g.Total, w.Total))
		case math.Abs(g.Score-w.Score) > scoreEpsilon:
			errs = append(errs, fmt.Errorf("athlete %s: score %.4f, want %.4f", w.AthleteID, g.Score, w.Score))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrMismatch, errors.Join(errs...))
	}
	return nil
}
