package domain

import "errors"

// ErrValidation and related errors describe rejected input.
var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidText   = errors.New("invalid task text")
	ErrInvalidName   = errors.New("invalid name")
	ErrUnknownColumn = errors.New("unknown column")
	ErrDuplicateID   = errors.New("duplicate task id")
	ErrNoColumns     = errors.New("board requires at least one column")
)
