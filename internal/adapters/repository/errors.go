package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrMeetNotFound    = errors.New("meet not found")
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrInvalidLift     = errors.New("invalid lift")
	ErrInvalidAttempt  = errors.New("invalid attempt index")
	ErrInvalidJudge    = errors.New("invalid judge index")
	ErrInvalidVerdict  = errors.New("invalid verdict")
	ErrInvalidMutation = errors.New("invalid mutation")
	ErrPersist         = errors.New("persist failed")
)
