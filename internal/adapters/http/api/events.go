package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/liftboard/internal/domain/dedupe"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/pkg/metrics"
)

// EventDependencies defines the interface for event processing dependencies.
type EventDependencies interface {
	dedupe.Deduper
	// Enqueue pushes a mutation for async apply. Returns false on backpressure.
	Enqueue(ctx context.Context, m model.Mutation) bool
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
	v    *requestValidator
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, v *requestValidator) *EventsHandler {
	return &EventsHandler{deps: deps, v: v}
}

func mutationFromEvent(meetID string, in types.EventInput) (model.Mutation, error) {
	lift, err := model.ParseLift(in.Lift)
	if err != nil {
		return model.Mutation{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	m := model.Mutation{
		EventID:   in.EventID,
		MeetID:    meetID,
		AthleteID: in.AthleteID,
		Kind:      model.MutationKind(in.Kind),
		Lift:      lift,
		Attempt:   in.Attempt - 1,
		TS:        time.Now(),
	}
	switch m.Kind {
	case model.MutationAttemptWeight:
		m.Weight = model.FromKg(in.Weight)
	case model.MutationVerdict, model.MutationCycleVerdict:
		if in.Judge < 1 {
			return model.Mutation{}, fmt.Errorf("%w: judge is required for %s", ErrValidation, in.Kind)
		}
		m.Judge = in.Judge - 1
		if m.Kind == model.MutationVerdict {
			if in.Verdict == "" {
				return model.Mutation{}, fmt.Errorf("%w: verdict is required for %s", ErrValidation, in.Kind)
			}
			if m.Verdict, err = model.ParseVerdict(in.Verdict); err != nil {
				return model.Mutation{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
			}
		}
	}
	return m, nil
}

// HandlePostEvent handles POST /meets/{meetID}/events.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var in types.EventInput
	if err := decodeBody(r, h.v, &in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := mutationFromEvent(r.PathValue("meetID"), in)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), m.EventID) {
		metrics.RecordMutationDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), m); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), m.EventID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
