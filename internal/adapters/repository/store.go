// Package repository owns meets and their athletes. Callers receive deep
// copies; nothing outside this package mutates stored state.
package repository

import (
	"context"

	"github.com/okian/liftboard/internal/domain/model"
)

// MeetPatch changes meet details. Empty fields are left unchanged.
type MeetPatch struct {
	Name     string
	Date     string
	Location string
}

// Store provides read/write access to meets.
type Store interface {
	// CreateMeet stores a new meet, assigning an id when empty.
	CreateMeet(ctx context.Context, m model.Meet) (model.Meet, error)
	// Meet returns a snapshot of one meet.
	// Returns ErrMeetNotFound if the meet is unknown.
	Meet(ctx context.Context, meetID string) (model.Meet, error)
	// Meets returns snapshots of all meets in creation order.
	Meets(ctx context.Context) ([]model.Meet, error)
	UpdateMeet(ctx context.Context, meetID string, p MeetPatch) (model.Meet, error)
	DeleteMeet(ctx context.Context, meetID string) error

	// AddAthlete appends an athlete, assigning an id when empty and a weight
	// class when none is given.
	AddAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error)
	// UpdateAthlete replaces the athlete's profile and keeps its attempts.
	UpdateAthlete(ctx context.Context, meetID string, a model.Athlete) (model.Athlete, error)
	RemoveAthlete(ctx context.Context, meetID, athleteID string) error

	// Apply performs one attempt mutation and returns the updated athlete.
	Apply(ctx context.Context, m model.Mutation) (model.Athlete, error)

	// SaveHistory stores a leaderboard snapshot, replacing the meet's
	// previous one.
	SaveHistory(ctx context.Context, h model.HistoryEntry) error
	// History returns saved snapshots, newest first.
	History(ctx context.Context) ([]model.HistoryEntry, error)

	// Count returns the number of meets and athletes.
	Count(ctx context.Context) (meets, athletes int)
}

// Persister stores meets durably. The memory store writes through to it
// before publishing a change.
type Persister interface {
	Load(ctx context.Context) ([]model.Meet, []model.HistoryEntry, error)
	SaveMeet(ctx context.Context, m model.Meet) error
	DeleteMeet(ctx context.Context, meetID string) error
	SaveHistory(ctx context.Context, h model.HistoryEntry) error
	Close() error
}
