package repository

import (
	"time"

	"github.com/okian/liftboard/internal/domain/weightclass"
	"github.com/okian/liftboard/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithPersister enables write-through persistence. Stored state is loaded
// from it on construction; the store owns p and closes it if loading fails.
func WithPersister(p Persister) Option {
	return func(s *MemoryStore) {
		if p != nil {
			s.persister = p
		}
	}
}

// WithClasses sets the table used to derive weight classes.
func WithClasses(t weightclass.Table) Option {
	return func(s *MemoryStore) {
		if t != nil {
			s.classes = t
		}
	}
}

// WithClock sets the time source for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
