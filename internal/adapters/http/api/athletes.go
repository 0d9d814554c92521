package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/types"
)

// AthleteDependencies defines roster and attempt operations.
type AthleteDependencies interface {
	AddAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error)
	UpdateAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error)
	RemoveAthlete(ctx context.Context, meetID, athleteID string) error
	// Apply performs a mutation synchronously.
	Apply(ctx context.Context, m model.Mutation) (model.Athlete, error)
}

// AthletesHandler handles roster and attempt requests.
type AthletesHandler struct {
	deps   AthleteDependencies
	v      *requestValidator
	scorer *scoring.Scorer
}

// NewAthletesHandler creates a new athletes handler.
func NewAthletesHandler(deps AthleteDependencies, v *requestValidator, sc *scoring.Scorer) *AthletesHandler {
	return &AthletesHandler{deps: deps, v: v, scorer: sc}
}

func athleteFromInput(in types.AthleteInput) (model.Athlete, error) {
	sex, err := model.ParseSex(in.Sex)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	a := model.Athlete{
		Name:        in.Name,
		Sex:         sex,
		Bodyweight:  model.FromKg(in.Bodyweight),
		WeightClass: in.WeightClass,
	}
	if in.Category != "" {
		cat, err := model.ParseCategory(in.Category)
		if err != nil {
			return model.Athlete{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		a.Category = cat
	}
	return a, nil
}

func (h *AthletesHandler) decodeAthlete(r *http.Request) (model.Athlete, error) {
	var in types.AthleteInput
	if err := decodeBody(r, h.v, &in); err != nil {
		return model.Athlete{}, err
	}
	return athleteFromInput(in)
}

// HandleAdd handles POST /meets/{meetID}/athletes.
func (h *AthletesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_athlete"
	a, err := h.decodeAthlete(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	a, err = h.deps.AddAthlete(r.Context(), r.PathValue("meetID"), a)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromAthlete(a, h.scorer))
}

// HandleUpdate handles PUT /meets/{meetID}/athletes/{athleteID}.
func (h *AthletesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_athlete"
	a, err := h.decodeAthlete(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	a.ID = r.PathValue("athleteID")
	a, err = h.deps.UpdateAthlete(r.Context(), r.PathValue("meetID"), a)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAthlete(a, h.scorer))
}

// HandleRemove handles DELETE /meets/{meetID}/athletes/{athleteID}.
func (h *AthletesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_athlete"
	if err := h.deps.RemoveAthlete(r.Context(), r.PathValue("meetID"), r.PathValue("athleteID")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attemptTarget reads the meet, athlete, lift and attempt path values.
func attemptTarget(r *http.Request) (model.Mutation, error) {
	lift, err := model.ParseLift(r.PathValue("lift"))
	if err != nil {
		return model.Mutation{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	idx, err := pathIndex(r, "attempt", model.AttemptsPerLift)
	if err != nil {
		return model.Mutation{}, err
	}
	return model.Mutation{
		MeetID:    r.PathValue("meetID"),
		AthleteID: r.PathValue("athleteID"),
		Lift:      lift,
		Attempt:   idx,
		TS:        time.Now(),
	}, nil
}

// HandleSetWeight handles PUT .../attempts/{lift}/{attempt}.
func (h *AthletesHandler) HandleSetWeight(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_attempt_weight"
	m, err := attemptTarget(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	var in types.AttemptWeightInput
	if err := decodeBody(r, h.v, &in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m.Kind = model.MutationAttemptWeight
	m.Weight = model.FromKg(in.Weight)
	h.apply(w, r, op, m)
}

// HandleSetVerdict handles PUT .../attempts/{lift}/{attempt}/judges/{judge}.
// An empty body or verdict cycles the light to its next state.
func (h *AthletesHandler) HandleSetVerdict(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_verdict"
	m, err := attemptTarget(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if m.Judge, err = pathIndex(r, "judge", model.JudgeCount); err != nil {
		writeServiceError(w, op, err)
		return
	}

	var in types.VerdictInput
	if err := decodeOptionalBody(r, h.v, &in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	if in.Verdict == "" {
		m.Kind = model.MutationCycleVerdict
	} else {
		m.Kind = model.MutationVerdict
		if m.Verdict, err = model.ParseVerdict(in.Verdict); err != nil {
			writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
	}
	h.apply(w, r, op, m)
}

func (h *AthletesHandler) apply(w http.ResponseWriter, r *http.Request, op string, m model.Mutation) {
	a, err := h.deps.Apply(r.Context(), m)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromAthlete(a, h.scorer))
}
