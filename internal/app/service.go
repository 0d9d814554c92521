// Package service wires the repository, mutation pipeline and domain
// engines into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/liftboard/internal/adapters/mq/queue"
	workerpool "github.com/okian/liftboard/internal/adapters/mq/worker"
	"github.com/okian/liftboard/internal/adapters/repository"
	"github.com/okian/liftboard/internal/adapters/repository/sqlite"
	"github.com/okian/liftboard/internal/domain/dedupe"
	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/ranking"
	"github.com/okian/liftboard/internal/domain/scoring"
	"github.com/okian/liftboard/internal/domain/strategy"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/internal/meetfile"
	"github.com/okian/liftboard/pkg/logger"
	"github.com/okian/liftboard/pkg/metrics"
)

// Defaults for a meet created without details.
const (
	DefaultMeetName     = "Open Session A"
	DefaultMeetLocation = "Main Platform"
)

// Service implements the API dependencies for the meet engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.MemoryStore
	deduper *dedupe.Window
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool
	scorer  *scoring.Scorer
	ranker  *ranking.Ranker
	solver  *strategy.Solver

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	databasePath string
	seedFile     string
	defaultMeet  bool
	solverOpts   []strategy.Option
	now          func() time.Time

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  50_000,
		defaultMeet: true,
		now:         time.Now,
		scorer:      scoring.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ranker = ranking.New(ranking.WithScorer(s.scorer))
	s.solver = strategy.New(append([]strategy.Option{strategy.WithScorer(s.scorer)}, s.solverOpts...)...)
	return s
}

// Scorer returns the scorer shared by ranking and the solver.
func (s *Service) Scorer() *scoring.Scorer { return s.scorer }

// Start opens storage, seeds an empty store and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting meet service...")

	storeOpts := []repository.Option{repository.WithClock(s.now)}
	if s.databasePath != "" {
		db, err := sqlite.Open(s.databasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		storeOpts = append(storeOpts, repository.WithPersister(db))
		s.logger.Info(ctx, "using sqlite persistence", logger.String("path", s.databasePath))
	}
	store, err := repository.NewMemoryStore(ctx, storeOpts...)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.store = store

	if err := s.seed(ctx); err != nil {
		_ = s.store.Close()
		s.store = nil
		return err
	}

	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "meet service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// seed fills an empty store from the seed file or with a default meet.
func (s *Service) seed(ctx context.Context) error {
	if meets, _ := s.store.Count(ctx); meets > 0 {
		return nil
	}
	switch {
	case s.seedFile != "":
		m, err := meetfile.Load(s.seedFile)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSeed, err)
		}
		if _, err := s.store.CreateMeet(ctx, m); err != nil {
			return fmt.Errorf("%w: %w", ErrSeed, err)
		}
		s.logger.Info(ctx, "seeded meet from file",
			logger.String("path", s.seedFile),
			logger.Int("athletes", len(m.Athletes)),
		)
	case s.defaultMeet:
		if _, err := s.store.CreateMeet(ctx, s.newMeet(types.MeetInput{})); err != nil {
			return fmt.Errorf("%w: %w", ErrSeed, err)
		}
		s.logger.Info(ctx, "created default meet")
	}
	return nil
}

// Shutdown drains queued mutations, then closes storage.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping meet service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.started = false
	s.logger.Info(ctx, "meet service stopped")
	return errors.Join(errs...)
}

// Stop shuts the service down with a short deadline.
func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "shutdown incomplete", logger.Error(err))
	}
}

func (s *Service) newMeet(in types.MeetInput) model.Meet {
	m := model.Meet{Name: in.Name, Date: in.Date, Location: in.Location}
	if m.Name == "" {
		m.Name = DefaultMeetName
	}
	if m.Location == "" {
		m.Location = DefaultMeetLocation
	}
	if m.Date == "" {
		m.Date = s.now().Format(model.DateLayout)
	}
	return m
}

// CreateMeet creates a meet, filling in default details.
func (s *Service) CreateMeet(ctx context.Context, in types.MeetInput) (model.Meet, error) {
	store, err := s.repo()
	if err != nil {
		return model.Meet{}, err
	}
	return store.CreateMeet(ctx, s.newMeet(in))
}

// repo returns the store, or ErrNotStarted before Start has opened it.
func (s *Service) repo() (*repository.MemoryStore, error) {
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Meets returns all meets in creation order.
func (s *Service) Meets(ctx context.Context) ([]model.Meet, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.Meets(ctx)
}

// Meet returns one meet.
func (s *Service) Meet(ctx context.Context, meetID string) (model.Meet, error) {
	store, err := s.repo()
	if err != nil {
		return model.Meet{}, err
	}
	return store.Meet(ctx, meetID)
}

// UpdateMeet changes the non-empty meet details in in.
func (s *Service) UpdateMeet(ctx context.Context, meetID string, in types.MeetInput) (model.Meet, error) {
	store, err := s.repo()
	if err != nil {
		return model.Meet{}, err
	}
	return store.UpdateMeet(ctx, meetID, repository.MeetPatch{
		Name:     in.Name,
		Date:     in.Date,
		Location: in.Location,
	})
}

// DeleteMeet removes a meet and its history.
func (s *Service) DeleteMeet(ctx context.Context, meetID string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	return store.DeleteMeet(ctx, meetID)
}

// AddAthlete registers an athlete in a meet.
func (s *Service) AddAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	store, err := s.repo()
	if err != nil {
		return model.Athlete{}, err
	}
	return store.AddAthlete(ctx, meetID, a)
}

// UpdateAthlete replaces an athlete's profile.
func (s *Service) UpdateAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	store, err := s.repo()
	if err != nil {
		return model.Athlete{}, err
	}
	return store.UpdateAthlete(ctx, meetID, a)
}

// RemoveAthlete removes an athlete from a meet.
func (s *Service) RemoveAthlete(ctx context.Context, meetID, athleteID string) error {
	store, err := s.repo()
	if err != nil {
		return err
	}
	return store.RemoveAthlete(ctx, meetID, athleteID)
}

// Apply performs one attempt mutation synchronously.
func (s *Service) Apply(ctx context.Context, m model.Mutation) (model.Athlete, error) {
	store, err := s.repo()
	if err != nil {
		return model.Athlete{}, err
	}
	a, err := store.Apply(ctx, m)
	if err != nil {
		return model.Athlete{}, err
	}
	metrics.RecordMutationApplied(string(m.Kind))
	return a, nil
}

// SeenAndRecord reports whether an event id was already seen, recording it
// if not. Before Start every id is unseen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.deduper == nil {
		return false
	}
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord forgets an event id so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.deduper == nil {
		return
	}
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of remembered event ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a mutation for asynchronous apply. It returns false when
// the queue is full or closed.
func (s *Service) Enqueue(ctx context.Context, m model.Mutation) bool {
	if s.queue == nil {
		return false
	}
	s.logger.Debug(ctx, "enqueueing mutation",
		logger.String("eventID", m.EventID),
		logger.String("meetID", m.MeetID),
		logger.String("athleteID", m.AthleteID),
		logger.String("kind", string(m.Kind)),
	)
	return s.queue.Enqueue(ctx, m)
}

// Leaderboard ranks the filtered athletes of a meet.
func (s *Service) Leaderboard(ctx context.Context, meetID string, view model.View, metric scoring.Metric, f ranking.Filter) ([]ranking.Entry, error) {
	m, err := s.Meet(ctx, meetID)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(f.Apply(m.Athletes), view, metric), nil
}

// Strategy runs the solver over the filtered athletes of a meet. Ids outside
// the filter resolve as an invalid selection.
func (s *Service) Strategy(ctx context.Context, meetID string, f ranking.Filter, req strategy.Request) (strategy.Result, error) {
	m, err := s.Meet(ctx, meetID)
	if err != nil {
		return strategy.Result{}, err
	}
	return s.solver.Solve(f.Apply(m.Athletes), req), nil
}

// SaveHistory stores the meet's current total ranking under metric,
// replacing any earlier entry for the meet.
func (s *Service) SaveHistory(ctx context.Context, meetID string, metric scoring.Metric) (model.HistoryEntry, error) {
	m, err := s.Meet(ctx, meetID)
	if err != nil {
		return model.HistoryEntry{}, err
	}

	byID := make(map[string]model.Athlete, len(m.Athletes))
	for _, a := range m.Athletes {
		byID[a.ID] = a
	}
	entries := s.ranker.Rank(m.Athletes, model.ViewTotal, metric)
	h := model.HistoryEntry{
		MeetID:   m.ID,
		MeetName: m.Name,
		Date:     m.Date,
		Location: m.Location,
		SavedAt:  s.now(),
		SortMode: metric.String(),
		Athletes: make([]model.HistoryAthlete, 0, len(entries)),
	}
	for _, e := range entries {
		h.Athletes = append(h.Athletes, model.HistoryAthlete{
			Athlete: byID[e.AthleteID],
			Bests:   e.Bests,
			Total:   e.Total,
			GL:      e.Score,
		})
	}
	store, err := s.repo()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	if err := store.SaveHistory(ctx, h); err != nil {
		return model.HistoryEntry{}, err
	}
	s.logger.Info(ctx, "saved meet history",
		logger.String("meetID", m.ID),
		logger.String("sortMode", h.SortMode),
		logger.Int("athletes", len(h.Athletes)),
	)
	return h, nil
}

// History returns saved entries, newest first.
func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	store, err := s.repo()
	if err != nil {
		return nil, err
	}
	return store.History(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"persistent":  s.databasePath != "",
	}
	if !s.started {
		return stats
	}

	meets, athletes := s.store.Count(ctx)
	queueLen := s.queue.Len(ctx)
	stats["meets"] = meets
	stats["athletes"] = athletes
	stats["queueLength"] = queueLen
	stats["processed"] = s.pool.Processed()
	stats["seenEvents"] = s.deduper.Size()
	stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateMeetsTotal(meets)
	metrics.UpdateAthletesTotal(athletes)
	metrics.UpdateWorkerActiveCount(s.pool.Size())
	return stats
}
