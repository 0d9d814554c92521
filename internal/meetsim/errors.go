package meetsim

import "errors"

var (
	// ErrUnhealthy is returned when the health check fails.
	ErrUnhealthy = errors.New("meetsim: service unhealthy")
	// ErrUnexpectedStatus is returned for an HTTP status the client cannot handle.
	ErrUnexpectedStatus = errors.New("meetsim: unexpected status")
	// ErrMismatch is returned when the served board differs from the local ranking.
	ErrMismatch = errors.New("meetsim: leaderboard mismatch")
	// ErrEventsFailed is returned when some events could not be submitted.
	ErrEventsFailed = errors.New("meetsim: events failed")
)
