// Package strategy finds the smallest attempt change that moves one athlete
// ahead of another.
package strategy

import (
	"fmt"
	"strings"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
)

// Status classifies a solver result.
type Status int

// Statuses.
const (
	StatusInvalidSelection Status = iota
	StatusLocked
	StatusFound
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusInvalidSelection:
		return "invalid_selection"
	case StatusLocked:
		return "locked"
	case StatusFound:
		return "found"
	case StatusUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Unit is the unit of a found value.
type Unit string

// Units.
const (
	UnitKg Unit = "kg"
	UnitGL Unit = "GL"
)

// Notes attached to results.
const (
	NoteSelectPair      = "Select athlete and target from the current filtered field."
	NoteDistinctPair    = "Choose two different athletes."
	NoteTotalLockedTie  = "Already winning on bodyweight tie-break."
	NoteTotalLocked     = "Already leading under current scoring."
	NoteLiftLockedTie   = "Ahead via bodyweight tie-break."
	NoteLiftUnreachable = "Projected attempt cap reached. Consider different strategy."

	tieSuffix = " (wins on bodyweight)."
)

// Request selects the athlete pair and what the athlete may change.
type Request struct {
	AthleteID string
	TargetID  string
	// Focus is the lift the athlete will change, or the total for an
	// increase on any lift.
	Focus   model.View
	Scoring scoring.Metric
}

// Result is the outcome of a search. Value and Unit are set only when a
// winning candidate was found.
type Result struct {
	Status     Status
	Value      float64
	Unit       Unit
	Tie        bool
	Note       string
	Iterations int
}

// Display renders the headline value shown next to the note.
func (r Result) Display() string {
	switch r.Status {
	case StatusLocked:
		return "LOCKED"
	case StatusUnreachable:
		return "N/A"
	case StatusFound:
		if r.Unit == UnitGL {
			return fmt.Sprintf("%.2f GL", r.Value)
		}
		return fmt.Sprintf("%.1f kg", r.Value)
	default:
		return "--"
	}
}

// Solver runs bounded linear searches over attempt increments. It is
// stateless and safe for concurrent use.
type Solver struct {
	scorer      *scoring.Scorer
	step        model.Weight
	additionCap model.Weight
	attemptCap  model.Weight
}

// New creates a solver with the default step and caps.
func New(opts ...Option) *Solver {
	s := &Solver{
		scorer:      scoring.New(),
		step:        model.FromKg(DefaultStepKg),
		additionCap: model.FromKg(DefaultAdditionCap),
		attemptCap:  model.FromKg(DefaultAttemptCapKg),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve resolves the pair within athletes and searches for the first
// winning candidate. The scored metric never decreases as the candidate
// grows, so the first win is the minimal one.
func (s *Solver) Solve(athletes []model.Athlete, req Request) Result {
	athlete, okA := find(athletes, req.AthleteID)
	target, okT := find(athletes, req.TargetID)
	if !okA || !okT {
		return Result{Status: StatusInvalidSelection, Note: NoteSelectPair}
	}
	if athlete.ID == target.ID {
		return Result{Status: StatusInvalidSelection, Note: NoteDistinctPair}
	}

	p := pair{
		athleteBW:    athlete.Bodyweight,
		targetBW:     target.Bodyweight,
		total:        scoring.Total(athlete),
		metric:       req.Scoring,
		targetPoints: s.scorer.Points(req.Scoring, scoring.Total(target), target.Bodyweight),
	}
	if l, ok := req.Focus.Lift(); ok {
		return s.solveLift(p, l, scoring.BestLift(athlete.Set(l)))
	}
	return s.solveTotal(p)
}

type pair struct {
	athleteBW    model.Weight
	targetBW     model.Weight
	total        model.Weight
	metric       scoring.Metric
	targetPoints scoring.Points
}

func (s *Solver) compare(p pair, total model.Weight) scoring.Outcome {
	return scoring.Compare(s.scorer.Points(p.metric, total, p.athleteBW), p.targetPoints, p.athleteBW, p.targetBW)
}

func (s *Solver) solveTotal(p pair) Result {
	if lead := s.compare(p, p.total); lead.Wins {
		note := NoteTotalLocked
		if lead.Tie {
			note = NoteTotalLockedTie
		}
		return Result{Status: StatusLocked, Tie: lead.Tie, Note: note}
	}

	iterations := 0
	for d := s.step; d <= s.additionCap; d += s.step {
		iterations++
		projected := p.total + d
		out := s.compare(p, projected)
		if !out.Wins {
			continue
		}
		res := Result{
			Status:     StatusFound,
			Value:      projected.Kg(),
			Unit:       UnitKg,
			Tie:        out.Tie,
			Note:       "Need +" + d.String() + " kg on any lift to move ahead" + suffix(out.Tie),
			Iterations: iterations,
		}
		if p.metric == scoring.MetricNormalized {
			res.Value = s.scorer.Normalized(projected, p.athleteBW)
			res.Unit = UnitGL
		}
		return res
	}
	note := fmt.Sprintf("Cannot reach target with +%gkg cap. Reassess attempts.", s.additionCap.Kg())
	return Result{Status: StatusUnreachable, Note: note, Iterations: iterations}
}

func (s *Solver) solveLift(p pair, l model.Lift, best model.Weight) Result {
	if lead := s.compare(p, p.total); lead.Wins {
		note := "Already ahead on " + strings.ToUpper(p.metric.String()) + " scoring."
		if lead.Tie {
			note = NoteLiftLockedTie
		}
		return Result{Status: StatusLocked, Tie: lead.Tie, Note: note}
	}

	iterations := 0
	for w := max(best, s.step); w <= s.attemptCap; w += s.step {
		iterations++
		out := s.compare(p, p.total-best+w)
		if !out.Wins {
			continue
		}
		return Result{
			Status:     StatusFound,
			Value:      w.Kg(),
			Unit:       UnitKg,
			Tie:        out.Tie,
			Note:       "Set " + l.Label() + " to " + w.String() + " kg to surpass" + suffix(out.Tie),
			Iterations: iterations,
		}
	}
	return Result{Status: StatusUnreachable, Note: NoteLiftUnreachable, Iterations: iterations}
}

func suffix(tie bool) string {
	if tie {
		return tieSuffix
	}
	return "."
}

func find(athletes []model.Athlete, id string) (model.Athlete, bool) {
	if id == "" {
		return model.Athlete{}, false
	}
	for _, a := range athletes {
		if a.ID == id {
			return a, true
		}
	}
	return model.Athlete{}, false
}
