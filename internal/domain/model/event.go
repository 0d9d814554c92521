// Package model contains domain models passed between layers.
package model

import "time"

// MutationKind selects which athlete field a Mutation changes.
type MutationKind string

// Mutation kinds.
const (
	MutationAttemptWeight MutationKind = "attempt_weight"
	MutationVerdict       MutationKind = "verdict"
	MutationCycleVerdict  MutationKind = "cycle_verdict"
)

// Mutation is a table-side change to one attempt, submitted as an event.
// Judge and Verdict apply to verdict kinds; Weight applies to attempt_weight.
type Mutation struct {
	EventID   string       // unique id for idempotency
	MeetID    string       // meet the athlete belongs to
	AthleteID string       // athlete identifier
	Kind      MutationKind // which field changes
	Lift      Lift         // lift the attempt belongs to
	Attempt   int          // 0-based attempt index
	Judge     int          // 0-based judge index
	Weight    Weight       // new attempt weight
	Verdict   Verdict      // new judge verdict
	TS        time.Time    // submission timestamp
}
