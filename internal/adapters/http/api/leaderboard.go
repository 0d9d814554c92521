package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/strategy"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/pkg/metrics"
)

// LeaderboardDependencies defines ranking and strategy reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, meetID string, view model.View, metric scoring.Metric, f ranking.Filter) ([]ranking.Entry, error)
	Strategy(ctx context.Context, meetID string, f ranking.Filter, req strategy.Request) (strategy.Result, error)
}

// LeaderboardHandler handles leaderboard and strategy requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /meets/{meetID}/leaderboard.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()
	view, err := model.ParseView(q.Get("view"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	metric, err := scoring.ParseMetric(q.Get("metric"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	meetID := r.PathValue("meetID")
	entries, err := h.deps.Leaderboard(r.Context(), meetID, view, metric, f)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	metrics.RecordLeaderboardRequest(view.String(), metric.String())
	writeJSON(w, http.StatusOK, types.Leaderboard{
		MeetID: meetID,
		View:   view.String(),
		Metric: metric.String(),
		Rows:   types.FromEntries(entries),
	})
}

// HandleGetStrategy handles GET /meets/{meetID}/strategy.
func (h *LeaderboardHandler) HandleGetStrategy(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_strategy"
	q := r.URL.Query()
	focus, err := model.ParseView(q.Get("focus"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	metric, err := scoring.ParseMetric(q.Get("scoring"))
	if err != nil {
		writeServiceError(w, op, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}

	res, err := h.deps.Strategy(r.Context(), r.PathValue("meetID"), f, strategy.Request{
		AthleteID: q.Get("athlete"),
		TargetID:  q.Get("target"),
		Focus:     focus,
		Scoring:   metric,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	metrics.RecordStrategyResult(res.Status.String(), res.Iterations)
	writeJSON(w, http.StatusOK, types.FromResult(res))
}
