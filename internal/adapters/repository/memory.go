package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/weightclass"
	"github.com/okian/liftboard/pkg/logger"
	"github.com/okian/liftboard/pkg/metrics"
)

// snapshot is an immutable view of all stored state. Writers build a new
// snapshot and publish it; readers load it without locking.
type snapshot struct {
	meets   map[string]*model.Meet
	order   []string
	history map[string]model.HistoryEntry
}

func (s *snapshot) clone() *snapshot {
	out := &snapshot{
		meets:   make(map[string]*model.Meet, len(s.meets)+1),
		order:   slices.Clone(s.order),
		history: make(map[string]model.HistoryEntry, len(s.history)),
	}
	for k, v := range s.meets {
		out.meets[k] = v
	}
	for k, v := range s.history {
		out.history[k] = v
	}
	return out
}

// MemoryStore is an in-memory Store with optional write-through
// persistence.
type MemoryStore struct {
	mu    sync.Mutex // serializes writers
	state atomic.Pointer[snapshot]

	persister Persister
	classes   weightclass.Table
	now       func() time.Time
	log       logger.Logger
}

// NewMemoryStore creates a store, loading existing state from the persister
// when one is configured.
func NewMemoryStore(ctx context.Context, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		classes: weightclass.Default(),
		now:     time.Now,
		log:     logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}

	initial := &snapshot{
		meets:   make(map[string]*model.Meet),
		history: make(map[string]model.HistoryEntry),
	}
	if s.persister != nil {
		meets, history, err := s.persister.Load(ctx)
		if err != nil {
			if cerr := s.persister.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
			return nil, fmt.Errorf("%w: load: %w", ErrPersist, err)
		}
		for i := range meets {
			m := meets[i].Clone()
			initial.meets[m.ID] = &m
			initial.order = append(initial.order, m.ID)
		}
		for _, h := range history {
			initial.history[h.MeetID] = h
		}
		s.log.Info(ctx, "loaded persisted state",
			logger.Int("meets", len(meets)),
			logger.Int("history", len(history)),
		)
	}
	s.publish(initial)
	return s, nil
}

// Close releases the persister.
func (s *MemoryStore) Close() error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close()
}

func (s *MemoryStore) publish(next *snapshot) {
	s.state.Store(next)
	metrics.IncrementRepositorySnapshotCount()
	athletes := 0
	for _, m := range next.meets {
		athletes += len(m.Athletes)
	}
	metrics.UpdateMeetsTotal(len(next.meets))
	metrics.UpdateAthletesTotal(athletes)
}

// CreateMeet stores a new meet.
func (s *MemoryStore) CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error) {
	defer observeUpdate(time.Now())

	m = m.Clone()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for i := range m.Athletes {
		s.prepare(&m.Athletes[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if _, ok := cur.meets[m.ID]; ok {
		return model.Meet{}, fmt.Errorf("%w: meet %s already exists", ErrInvalidMutation, m.ID)
	}
	if err := s.saveMeet(ctx, m); err != nil {
		return model.Meet{}, err
	}
	next := cur.clone()
	next.meets[m.ID] = &m
	next.order = append(next.order, m.ID)
	s.publish(next)
	return m.Clone(), nil
}

// Meet returns a snapshot of one meet.
func (s *MemoryStore) Meet(_ context.Context, meetID string) (model.Meet, error) {
	defer observeQuery(time.Now())

	m, ok := s.state.Load().meets[meetID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Meet{}, fmt.Errorf("%w: %s", ErrMeetNotFound, meetID)
	}
	return m.Clone(), nil
}

// Meets returns all meets in creation order.
func (s *MemoryStore) Meets(_ context.Context) ([]model.Meet, error) {
	defer observeQuery(time.Now())

	cur := s.state.Load()
	out := make([]model.Meet, 0, len(cur.order))
	for _, id := range cur.order {
		out = append(out, cur.meets[id].Clone())
	}
	return out, nil
}

// UpdateMeet changes meet details.
func (s *MemoryStore) UpdateMeet(ctx context.Context, meetID string, p MeetPatch) (model.Meet, error) {
	return s.update(ctx, meetID, func(m *model.Meet) error {
		if p.Name != "" {
			m.Name = p.Name
		}
		if p.Date != "" {
			m.Date = p.Date
		}
		if p.Location != "" {
			m.Location = p.Location
		}
		return nil
	})
}

// DeleteMeet removes a meet and its history.
func (s *MemoryStore) DeleteMeet(ctx context.Context, meetID string) error {
	defer observeUpdate(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if _, ok := cur.meets[meetID]; !ok {
		return fmt.Errorf("%w: %s", ErrMeetNotFound, meetID)
	}
	if s.persister != nil {
		if err := s.persister.DeleteMeet(ctx, meetID); err != nil {
			return s.persistError(ctx, "delete meet", err)
		}
	}
	next := cur.clone()
	delete(next.meets, meetID)
	delete(next.history, meetID)
	next.order = slices.DeleteFunc(next.order, func(id string) bool { return id == meetID })
	s.publish(next)
	return nil
}

// AddAthlete appends an athlete to a meet.
func (s *MemoryStore) AddAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.prepare(&a)
	_, err := s.update(ctx, meetID, func(m *model.Meet) error {
		if indexOf(m.Athletes, a.ID) >= 0 {
			return fmt.Errorf("%w: athlete %s already entered", ErrInvalidMutation, a.ID)
		}
		m.Athletes = append(m.Athletes, a)
		return nil
	})
	if err != nil {
		return model.Athlete{}, err
	}
	return a, nil
}

// UpdateAthlete replaces an athlete's profile. The weight class is derived
// again when the update carries none.
func (s *MemoryStore) UpdateAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error) {
	var out model.Athlete
	_, err := s.update(ctx, meetID, func(m *model.Meet) error {
		i := indexOf(m.Athletes, a.ID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAthleteNotFound, a.ID)
		}
		cur := &m.Athletes[i]
		cur.Name = a.Name
		cur.Sex = a.Sex
		cur.Category = a.Category
		cur.Bodyweight = a.Bodyweight
		cur.WeightClass = a.WeightClass
		s.prepare(cur)
		out = *cur
		return nil
	})
	return out, err
}

// RemoveAthlete drops an athlete from a meet.
func (s *MemoryStore) RemoveAthlete(ctx context.Context, meetID, athleteID string) error {
	_, err := s.update(ctx, meetID, func(m *model.Meet) error {
		i := indexOf(m.Athletes, athleteID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAthleteNotFound, athleteID)
		}
		m.Athletes = slices.Delete(m.Athletes, i, i+1)
		return nil
	})
	return err
}

// Apply performs one attempt mutation.
func (s *MemoryStore) Apply(ctx context.Context, mu model.Mutation) (model.Athlete, error) {
	var out model.Athlete
	_, err := s.update(ctx, mu.MeetID, func(m *model.Meet) error {
		i := indexOf(m.Athletes, mu.AthleteID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrAthleteNotFound, mu.AthleteID)
		}
		if err := applyMutation(&m.Athletes[i], mu); err != nil {
			return err
		}
		out = m.Athletes[i]
		return nil
	})
	return out, err
}

// SaveHistory stores a leaderboard snapshot for a known meet.
func (s *MemoryStore) SaveHistory(ctx context.Context, h model.HistoryEntry) error {
	defer observeUpdate(time.Now())

	if h.SavedAt.IsZero() {
		h.SavedAt = s.now()
	}
	h.Athletes = slices.Clone(h.Athletes)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if _, ok := cur.meets[h.MeetID]; !ok {
		return fmt.Errorf("%w: %s", ErrMeetNotFound, h.MeetID)
	}
	if s.persister != nil {
		if err := s.persister.SaveHistory(ctx, h); err != nil {
			return s.persistError(ctx, "save history", err)
		}
	}
	next := cur.clone()
	next.history[h.MeetID] = h
	s.publish(next)
	return nil
}

// History returns saved snapshots, newest first.
func (s *MemoryStore) History(_ context.Context) ([]model.HistoryEntry, error) {
	defer observeQuery(time.Now())

	cur := s.state.Load()
	out := make([]model.HistoryEntry, 0, len(cur.history))
	for _, h := range cur.history {
		h.Athletes = slices.Clone(h.Athletes)
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b model.HistoryEntry) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		if a.MeetID < b.MeetID {
			return -1
		}
		if a.MeetID > b.MeetID {
			return 1
		}
		return 0
	})
	return out, nil
}

// Count returns the number of meets and athletes.
func (s *MemoryStore) Count(_ context.Context) (meets, athletes int) {
	cur := s.state.Load()
	for _, m := range cur.meets {
		athletes += len(m.Athletes)
	}
	return len(cur.meets), athletes
}

// update runs fn on a copy of the meet and publishes the result.
func (s *MemoryStore) update(ctx context.Context, meetID string, fn func(*model.Meet) error) (model.Meet, error) {
	defer observeUpdate(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	stored, ok := cur.meets[meetID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Meet{}, fmt.Errorf("%w: %s", ErrMeetNotFound, meetID)
	}
	m := stored.Clone()
	if err := fn(&m); err != nil {
		return model.Meet{}, err
	}
	if err := s.saveMeet(ctx, m); err != nil {
		return model.Meet{}, err
	}
	next := cur.clone()
	next.meets[meetID] = &m
	s.publish(next)
	return m.Clone(), nil
}

func (s *MemoryStore) saveMeet(ctx context.Context, m model.Meet) error {
	if s.persister == nil {
		return nil
	}
	start := time.Now()
	err := s.persister.SaveMeet(ctx, m)
	metrics.RecordRepositoryPersistLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return s.persistError(ctx, "save meet", err)
	}
	return nil
}

func (s *MemoryStore) persistError(ctx context.Context, op string, err error) error {
	metrics.RecordErrorByComponent("repository", "persist")
	s.log.Error(ctx, "persist failed", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrPersist, op, err)
}

// prepare normalizes an athlete before it is stored.
func (s *MemoryStore) prepare(a *model.Athlete) {
	if a.Bodyweight < 0 {
		a.Bodyweight = 0
	}
	if a.Category == "" {
		a.Category = model.Open
	}
	if a.WeightClass == "" {
		a.WeightClass = s.classes.Lookup(a.Sex, a.Bodyweight)
	}
}

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
}
