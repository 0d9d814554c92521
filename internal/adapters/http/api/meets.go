package api

import (
	"context"
	"net/http"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/types"
)

// MeetDependencies defines the meet operations.
type MeetDependencies interface {
	CreateMeet(ctx context.Context, in types.MeetInput) (model.Meet, error)
	Meets(ctx context.Context) ([]model.Meet, error)
	Meet(ctx context.Context, meetID string) (model.Meet, error)
	UpdateMeet(ctx context.Context, meetID string, in types.MeetInput) (model.Meet, error)
	DeleteMeet(ctx context.Context, meetID string) error
}

// MeetsHandler handles meet requests.
type MeetsHandler struct {
	deps   MeetDependencies
	v      *requestValidator
	scorer *scoring.Scorer
}

// NewMeetsHandler creates a new meets handler.
func NewMeetsHandler(deps MeetDependencies, v *requestValidator, sc *scoring.Scorer) *MeetsHandler {
	return &MeetsHandler{deps: deps, v: v, scorer: sc}
}

// HandleList handles GET /meets.
func (h *MeetsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_meets"
	meets, err := h.deps.Meets(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	out := make([]types.MeetSummary, 0, len(meets))
	for _, m := range meets {
		out = append(out, types.Summarize(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /meets.
func (h *MeetsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_meet"
	var in types.MeetInput
	if err := decodeBody(r, h.v, &in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := h.deps.CreateMeet(r.Context(), in)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromMeet(m, h.scorer))
}

// HandleGet handles GET /meets/{meetID}.
func (h *MeetsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_meet"
	m, err := h.deps.Meet(r.Context(), r.PathValue("meetID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromMeet(m, h.scorer))
}

// HandlePatch handles PATCH /meets/{meetID}.
func (h *MeetsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_meet"
	var in types.MeetInput
	if err := decodeBody(r, h.v, &in); err != nil {
		writeServiceError(w, op, err)
		return
	}
	m, err := h.deps.UpdateMeet(r.Context(), r.PathValue("meetID"), in)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromMeet(m, h.scorer))
}

// HandleDelete handles DELETE /meets/{meetID}.
func (h *MeetsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_meet"
	if err := h.deps.DeleteMeet(r.Context(), r.PathValue("meetID")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
