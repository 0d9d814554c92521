package service

import "errors"

// Error constants.
var (
	ErrNotStarted = errors.New("service not started")
	ErrSeed       = errors.New("seed meet failed")
)
