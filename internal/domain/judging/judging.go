// Package judging aggregates the three judge lights of an attempt into a
// decision.
package judging

import "github.com/okian/liftboard/internal/domain/model"

// goodThreshold is the number of good lights that passes an attempt.
const goodThreshold = 2

// Decision is the aggregate of one attempt's verdicts.
type Decision struct {
	Good       int
	Bad        int
	Pending    int
	IsGood     bool
	IsComplete bool
}

// Evaluate counts the verdicts of an attempt. An attempt is good with at least
// two good lights regardless of the third.
func Evaluate(a model.Attempt) Decision {
	var d Decision
	for _, v := range a.Verdicts {
		switch v {
		case model.Good:
			d.Good++
		case model.Bad:
			d.Bad++
		}
	}
	d.Pending = model.JudgeCount - d.Good - d.Bad
	d.IsGood = d.Good >= goodThreshold
	d.IsComplete = d.Pending == 0
	return d
}

// Status labels shown on the attempt board.
const (
	StatusAwait  = "Await"
	StatusGood   = "Good"
	StatusNoLift = "No Lift"
)

// Status returns the board label for an attempt: Await while no light is
// set, then Good or No Lift.
func Status(a model.Attempt) string {
	d := Evaluate(a)
	switch {
	case d.Pending == model.JudgeCount:
		return StatusAwait
	case d.IsGood:
		return StatusGood
	default:
		return StatusNoLift
	}
}
