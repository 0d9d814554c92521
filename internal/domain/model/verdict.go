package model

import (
	"fmt"
	"strings"
)

// JudgeCount is the number of judges (and lights) per attempt.
const JudgeCount = 3

// Verdict is one judge's decision on an attempt.
type Verdict int

// Verdicts. The zero value is Pending.
const (
	Pending Verdict = iota
	Good
	Bad
)

func (v Verdict) String() string {
	switch v {
	case Pending:
		return "pending"
	case Good:
		return "good"
	case Bad:
		return "bad"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Valid reports whether v is a known verdict.
func (v Verdict) Valid() bool {
	return v >= Pending && v <= Bad
}

// Next cycles pending -> good -> bad -> pending, the way a judge light is
// toggled at the table.
func (v Verdict) Next() Verdict {
	switch v {
	case Pending:
		return Good
	case Good:
		return Bad
	default:
		return Pending
	}
}

// ParseVerdict parses a verdict name case-insensitively.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending":
		return Pending, nil
	case "good":
		return Good, nil
	case "bad":
		return Bad, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVerdict, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVerdict, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Verdict) UnmarshalText(b []byte) error {
	parsed, err := ParseVerdict(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
