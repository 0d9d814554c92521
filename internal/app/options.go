package service

import (
	"time"

	"github.com/okian/liftboard/internal/config"
	"github.com/okian/liftboard/internal/domain/strategy"
	"github.com/okian/liftboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of mutation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the mutation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDatabasePath enables SQLite persistence at path.
func WithDatabasePath(path string) Option {
	return func(s *Service) {
		s.databasePath = path
	}
}

// WithSeedFile loads a meet file into an empty store at start.
func WithSeedFile(path string) Option {
	return func(s *Service) {
		s.seedFile = path
	}
}

// WithDefaultMeet controls whether an empty store gets a default session.
func WithDefaultMeet(enabled bool) Option {
	return func(s *Service) {
		s.defaultMeet = enabled
	}
}

// WithStrategyBounds sets the solver step and caps in kilograms.
func WithStrategyBounds(stepKg, totalCapKg, attemptCapKg float64) Option {
	return func(s *Service) {
		s.solverOpts = []strategy.Option{
			strategy.WithStep(stepKg),
			strategy.WithAdditionCap(totalCapKg),
			strategy.WithAttemptCap(attemptCapKg),
		}
	}
}

// WithClock sets the time source for default dates and history stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig applies every service setting from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		for _, opt := range []Option{
			WithWorkerCount(cfg.WorkerCount),
			WithQueueSize(cfg.QueueSize),
			WithDedupeSize(cfg.DedupeSize),
			WithDatabasePath(cfg.DatabasePath),
			WithSeedFile(cfg.SeedFile),
			WithDefaultMeet(cfg.DefaultMeet),
			WithStrategyBounds(cfg.StrategyStepKg, cfg.StrategyTotalCapKg, cfg.StrategyAttemptCapKg),
		} {
			opt(s)
		}
	}
}
