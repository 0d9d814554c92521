package meetsim

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/liftboard/internal/domain/model"
	"github.com/okian/liftboard/internal/domain/types"
	"github.com/okian/liftboard/internal/meetfile"
	"github.com/okian/liftboard/pkg/logger"
)

// Retry settings for events the server rejects with backpressure.
const (
	maxRetries   = 50
	retryBackoff = 10 * time.Millisecond
	pollInterval = 100 * time.Millisecond
)

// Run simulates a full meet against the server at cfg.BaseURL: it enters a
// random roster, replays every attempt and light as shuffled table events,
// resubmits a sample of them, then waits for each leaderboard to match a
// local ranking of the same meet.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	cfg.withDefaults()
	log := logger.Get().Named("meetsim")
	stats := Stats{StartTime: time.Now()}

	log.Info(ctx, "starting meet simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("athletes", cfg.Athletes),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed))

	client := NewClient(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	if err := client.Health(ctx); err != nil {
		return stats, err
	}

	gen := NewGenerator(cfg.Seed)
	local := gen.Meet(fmt.Sprintf("Simulated Meet %d", cfg.Seed%10000), cfg.Athletes)

	meetID, err := enter(ctx, client, &local, &stats)
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "roster entered", logger.String("meetID", meetID), logger.Int("athletes", stats.AthletesCreated))

	var events []types.EventInput
	for _, a := range local.Athletes {
		events = append(events, gen.Events(a, a.ID)...)
	}
	stats.EventsGenerated = len(events)

	s := submitter{client: client, meetID: meetID, workers: cfg.Workers}
	s.submit(ctx, events)
	s.submit(ctx, gen.Duplicates(events, cfg.DupRate))
	s.collect(&stats)
	log.Info(ctx, "events submitted",
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("retried", stats.EventsRetried),
		logger.Int("failed", stats.EventsFailed))
	if stats.EventsFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrEventsFailed, stats.EventsFailed, stats.EventsSubmitted)
	}

	if err := converge(ctx, client, meetID, local, cfg.Settle, &stats); err != nil {
		return stats, err
	}

	if cfg.OutputFile != "" {
		local.ID = meetID
		if err := meetfile.Save(cfg.OutputFile, local); err != nil {
			log.Warn(ctx, "failed to save meet file", logger.Error(err))
		} else {
			log.Info(ctx, "meet file saved", logger.String("path", cfg.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	logStats(ctx, log, stats, cfg.Verbose)
	return stats, nil
}

// enter creates the meet and its roster, replacing local ids with the ones
// the server assigned. Athletes go in one at a time so roster order matches.
func enter(ctx context.Context, c *Client, m *model.Meet, stats *Stats) (string, error) {
	meet, err := c.CreateMeet(ctx, types.MeetInput{Name: m.Name, Location: m.Location})
	if err != nil {
		return "", fmt.Errorf("create meet: %w", err)
	}
	for i := range m.Athletes {
		a := &m.Athletes[i]
		created, err := c.AddAthlete(ctx, meet.ID, types.AthleteInput{
			Name:        a.Name,
			Sex:         string(a.Sex),
			Category:    string(a.Category),
			Bodyweight:  a.Bodyweight.Kg(),
			WeightClass: a.WeightClass,
		})
		if err != nil {
			return "", fmt.Errorf("add athlete %s: %w", a.Name, err)
		}
		a.ID = created.ID
		stats.AthletesCreated++
	}
	return meet.ID, nil
}

type submitter struct {
	client  *Client
	meetID  string
	workers int

	submitted, accepted, duplicate, retried, failed atomic.Int64
}

func (s *submitter) submit(ctx context.Context, events []types.EventInput) {
	ch := make(chan types.EventInput, s.workers*2)
	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range ch {
				s.one(ctx, e)
			}
		}()
	}
	go func() {
		defer close(ch)
		for _, e := range events {
			select {
			case <-ctx.Done():
				return
			case ch <- e:
			}
		}
	}()
	wg.Wait()
}

func (s *submitter) one(ctx context.Context, e types.EventInput) {
	s.submitted.Add(1)
	for attempt := range maxRetries {
		outcome, err := s.client.PostEvent(ctx, s.meetID, e)
		switch {
		case err != nil:
			logger.Get().Debug(ctx, "event failed", logger.String("eventID", e.EventID), logger.Error(err))
			s.failed.Add(1)
			return
		case outcome == outcomeAccepted:
			s.accepted.Add(1)
			return
		case outcome == outcomeDuplicate:
			s.duplicate.Add(1)
			return
		}
		s.retried.Add(1)
		select {
		case <-ctx.Done():
			s.failed.Add(1)
			return
		case <-time.After(retryBackoff * time.Duration(attempt+1)):
		}
	}
	s.failed.Add(1)
}

func (s *submitter) collect(stats *Stats) {
	stats.EventsSubmitted = int(s.submitted.Load())
	stats.EventsAccepted = int(s.accepted.Load())
	stats.EventsDuplicate = int(s.duplicate.Load())
	stats.EventsRetried = int(s.retried.Load())
	stats.EventsFailed = int(s.failed.Load())
}

// converge polls every board until all of them match or settle elapses.
func converge(ctx context.Context, c *Client, meetID string, local model.Meet, settle time.Duration, stats *Stats) error {
	ctx, cancel := context.WithTimeout(ctx, settle)
	defer cancel()

	boards := Boards()
	want := make([][]types.Row, len(boards))
	for i, b := range boards {
		want[i] = Expected(local, b)
	}

	var last error
	for {
		last = nil
		for i, b := range boards {
			stats.LeaderboardPolls++
			got, err := c.Leaderboard(ctx, meetID, b.View.String(), b.Metric.String())
			if err == nil {
				err = Verify(want[i], got)
			}
			if err != nil {
				last = fmt.Errorf("board %s: %w", b, err)
				break
			}
		}
		if last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return last
		case <-time.After(pollInterval):
		}
	}
}

func logStats(ctx context.Context, log logger.Logger, stats Stats, verbose bool) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}
	fields := []logger.Field{
		logger.Int("athletes", stats.AthletesCreated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Duration("duration", stats.Duration),
		logger.Float64("eventsPerSecond", eventsPerSecond),
	}
	if verbose {
		fields = append(fields,
			logger.Int("eventsRetried", stats.EventsRetried),
			logger.Int("leaderboardPolls", stats.LeaderboardPolls))
	}
	log.Info(ctx, "simulation passed", fields...)
}
