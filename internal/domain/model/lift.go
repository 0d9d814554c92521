package model

import (
	"fmt"
	"strings"
)

// Lift identifies one of the three contested lifts.
type Lift int

// Lifts in competition order.
const (
	Squat Lift = iota
	Bench
	Deadlift

	liftCount = 3
)

// Lifts returns the three lifts in competition order.
func Lifts() [liftCount]Lift {
	return [liftCount]Lift{Squat, Bench, Deadlift}
}

// Valid reports whether l is one of the known lifts.
func (l Lift) Valid() bool {
	return l >= Squat && l <= Deadlift
}

func (l Lift) String() string {
	switch l {
	case Squat:
		return "squat"
	case Bench:
		return "bench"
	case Deadlift:
		return "deadlift"
	default:
		return fmt.Sprintf("lift(%d)", int(l))
	}
}

// Label is the display name, e.g. "Squat".
func (l Lift) Label() string {
	switch l {
	case Squat:
		return "Squat"
	case Bench:
		return "Bench"
	case Deadlift:
		return "Deadlift"
	default:
		return l.String()
	}
}

// ParseLift parses a lift name case-insensitively.
func ParseLift(s string) (Lift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "squat":
		return Squat, nil
	case "bench":
		return Bench, nil
	case "deadlift":
		return Deadlift, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLift, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lift) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLift, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lift) UnmarshalText(b []byte) error {
	parsed, err := ParseLift(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// View selects what a leaderboard or strategy query is about: the
// three-lift total or a single lift. The zero value is the total.
type View int

// Views.
const (
	ViewTotal View = iota
	ViewSquat
	ViewBench
	ViewDeadlift
)

// ViewOf returns the view for a single lift.
func ViewOf(l Lift) View {
	switch l {
	case Squat:
		return ViewSquat
	case Bench:
		return ViewBench
	case Deadlift:
		return ViewDeadlift
	default:
		return ViewTotal
	}
}

// Lift returns the lift for a lift view; ok is false for ViewTotal.
func (v View) Lift() (Lift, bool) {
	switch v {
	case ViewSquat:
		return Squat, true
	case ViewBench:
		return Bench, true
	case ViewDeadlift:
		return Deadlift, true
	default:
		return 0, false
	}
}

// IsTotal reports whether v is the total view.
func (v View) IsTotal() bool {
	return v == ViewTotal
}

func (v View) String() string {
	if l, ok := v.Lift(); ok {
		return l.String()
	}
	if v == ViewTotal {
		return "total"
	}
	return fmt.Sprintf("view(%d)", int(v))
}

// Label is the display name, e.g. "Total".
func (v View) Label() string {
	if l, ok := v.Lift(); ok {
		return l.Label()
	}
	return "Total"
}

// ParseView parses "total" or a lift name. Empty input selects the total.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total":
		return ViewTotal, nil
	}
	l, err := ParseLift(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return ViewOf(l), nil
}

// MarshalText implements encoding.TextMarshaler.
func (v View) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *View) UnmarshalText(b []byte) error {
	parsed, err := ParseView(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
