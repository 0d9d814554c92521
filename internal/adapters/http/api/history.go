package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/types"
)

// HistoryDependencies defines saved leaderboard operations.
type HistoryDependencies interface {
	SaveHistory(ctx context.Context, meetID string, metric scoring.Metric) (model.HistoryEntry, error)
	History(ctx context.Context) ([]model.HistoryEntry, error)
}

// HistoryHandler handles saved leaderboard requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /meets/{meetID}/history. The response lists
// every saved meet, newest first, so the caller can compare sessions.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	entries, err := h.deps.History(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	meetID := r.PathValue("meetID")
	onlyMeet := r.URL.Query().Get("scope") == "meet"
	out := make([]types.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if onlyMeet && e.MeetID != meetID {
			continue
		}
		out = append(out, types.FromHistory(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSaveHistory handles POST /meets/{meetID}/history?metric=.
func (h *HistoryHandler) HandleSaveHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_history"
	metric, err := scoring.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	entry, err := h.deps.SaveHistory(r.Context(), r.PathValue("meetID"), metric)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.FromHistory(entry))
}
