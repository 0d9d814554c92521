package repository

import (
	"fmt"

	"github.com/okian/liftboard/internal/domain/model"
)

// applyMutation changes one attempt of a in place.
func applyMutation(a *model.Athlete, m model.Mutation) error {
	if !m.Lift.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLift, int(m.Lift))
	}
	at, ok := a.Attempt(m.Lift, m.Attempt)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidAttempt, m.Attempt+1)
	}

	switch m.Kind {
	case model.MutationAttemptWeight:
		if m.Weight < 0 {
			m.Weight = 0
		}
		at.Weight = m.Weight
		return nil
	case model.MutationVerdict, model.MutationCycleVerdict:
		if m.Judge < 0 || m.Judge >= model.JudgeCount {
			return fmt.Errorf("%w: %d", ErrInvalidJudge, m.Judge+1)
		}
		if m.Kind == model.MutationCycleVerdict {
			at.Verdicts[m.Judge] = at.Verdicts[m.Judge].Next()
			return nil
		}
		if !m.Verdict.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidVerdict, int(m.Verdict))
		}
		at.Verdicts[m.Judge] = m.Verdict
		return nil
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidMutation, m.Kind)
	}
}

// indexOf returns the position of an athlete in the roster or -1.
func indexOf(athletes []model.Athlete, id string) int {
	for i := range athletes {
		if athletes[i].ID == id {
			return i
		}
	}
	return -1
}
