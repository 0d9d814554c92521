package meetfile

import "errors"

// Error constants.
var (
	ErrInvalidFile     = errors.New("invalid meet file")
	ErrTooManyAttempts = errors.New("more than three attempts")
	ErrTooManyLights   = errors.New("more than three judge lights")
)
