// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/liftboard/internal/adapters/repository"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	MeetDependencies
	AthleteDependencies
	EventDependencies
	LeaderboardDependencies
	HistoryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	meetsHandler       *MeetsHandler
	athletesHandler    *AthletesHandler
	eventsHandler      *EventsHandler
	leaderboardHandler *LeaderboardHandler
	historyHandler     *HistoryHandler
	classesHandler     *ClassesHandler
}

// ServerOption configures the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	scorer *scoring.Scorer
}

// WithScorer sets the scorer used to render athlete scores.
func WithScorer(sc *scoring.Scorer) ServerOption {
	return func(c *serverConfig) {
		if sc != nil {
			c.scorer = sc
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	cfg := serverConfig{scorer: scoring.New()}
	for _, opt := range opts {
		opt(&cfg)
	}
	v := newRequestValidator()
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		meetsHandler:       NewMeetsHandler(deps, v, cfg.scorer),
		athletesHandler:    NewAthletesHandler(deps, v, cfg.scorer),
		eventsHandler:      NewEventsHandler(deps, v),
		leaderboardHandler: NewLeaderboardHandler(deps),
		historyHandler:     NewHistoryHandler(deps),
		classesHandler:     NewClassesHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	handle("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	handle("GET /stats", "stats", s.statsHandler.HandleStats)
	handle("GET /weight-classes", "weight_classes", s.classesHandler.HandleGetClasses)

	handle("GET /meets", "meets", s.meetsHandler.HandleList)
	handle("POST /meets", "meets", s.meetsHandler.HandleCreate)
	handle("GET /meets/{meetID}", "meet", s.meetsHandler.HandleGet)
	handle("PATCH /meets/{meetID}", "meet", s.meetsHandler.HandlePatch)
	handle("DELETE /meets/{meetID}", "meet", s.meetsHandler.HandleDelete)

	handle("POST /meets/{meetID}/athletes", "athletes", s.athletesHandler.HandleAdd)
	handle("PUT /meets/{meetID}/athletes/{athleteID}", "athlete", s.athletesHandler.HandleUpdate)
	handle("DELETE /meets/{meetID}/athletes/{athleteID}", "athlete", s.athletesHandler.HandleRemove)
	handle("PUT /meets/{meetID}/athletes/{athleteID}/attempts/{lift}/{attempt}", "attempt",
		s.athletesHandler.HandleSetWeight)
	handle("PUT /meets/{meetID}/athletes/{athleteID}/attempts/{lift}/{attempt}/judges/{judge}", "verdict",
		s.athletesHandler.HandleSetVerdict)

	handle("POST /meets/{meetID}/events", "events", s.eventsHandler.HandlePostEvent)
	handle("GET /meets/{meetID}/leaderboard", "leaderboard", s.leaderboardHandler.HandleGetLeaderboard)
	handle("GET /meets/{meetID}/strategy", "strategy", s.leaderboardHandler.HandleGetStrategy)
	handle("GET /meets/{meetID}/history", "history", s.historyHandler.HandleGetHistory)
	handle("POST /meets/{meetID}/history", "history", s.historyHandler.HandleSaveHistory)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps an error to its HTTP status.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrMeetNotFound),
		errors.Is(err, repository.ErrAthleteNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "validation", Wrap(op, err))
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidLift),
		errors.Is(err, repository.ErrInvalidAttempt),
		errors.Is(err, repository.ErrInvalidJudge),
		errors.Is(err, repository.ErrInvalidVerdict),
		errors.Is(err, repository.ErrInvalidMutation):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// decodeBody decodes a JSON body into dst and validates it.
func decodeBody(r *http.Request, v *requestValidator, dst any) error {
	return decode(r, v, dst, false)
}

// decodeOptionalBody is decodeBody for routes where a missing body leaves
// dst at its zero value.
func decodeOptionalBody(r *http.Request, v *requestValidator, dst any) error {
	return decode(r, v, dst, true)
}

func decode(r *http.Request, v *requestValidator, dst any, optional bool) error {
	if r.Body == nil || r.Body == http.NoBody {
		if optional {
			return nil
		}
		return fmt.Errorf("%w: empty body", ErrBadRequest)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return v.Validate(dst)
}

// pathIndex parses a 1-based path value into a 0-based index below limit.
func pathIndex(r *http.Request, name string, limit int) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > limit {
		return 0, fmt.Errorf("%w: %s must be 1..%d, got %q", ErrBadRequest, name, limit, raw)
	}
	return n - 1, nil
}

// parseFilter reads sex, category and weight_class query parameters.
func parseFilter(r *http.Request) (ranking.Filter, error) {
	q := r.URL.Query()
	var f ranking.Filter
	if s := q.Get("sex"); s != "" {
		sex, err := model.ParseSex(s)
		if err != nil {
			return f, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		f.Sex = sex
	}
	if c := q.Get("category"); c != "" {
		cat, err := model.ParseCategory(c)
		if err != nil {
			return f, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		f.Category = cat
	}
	f.WeightClass = q.Get("weight_class")
	return f, nil
}
