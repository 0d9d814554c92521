package model

import "errors"

// Sentinel kinds for parsing domain enums.
var (
	ErrUnknownLift     = errors.New("unknown lift")
	ErrUnknownView     = errors.New("unknown view")
	ErrUnknownVerdict  = errors.New("unknown verdict")
	ErrUnknownSex      = errors.New("unknown sex")
	ErrUnknownCategory = errors.New("unknown category")
)
