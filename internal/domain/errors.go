package domain

import "errors"

var (
	// ErrMalformedNumeric is returned when a non-empty numeric field cannot be parsed.
	ErrMalformedNumeric = errors.New("malformed numeric field")

	// ErrMalformedTime is returned when an approach time matches no supported layout.
	ErrMalformedTime = errors.New("malformed approach time")

	// ErrAlreadyLinked is returned when an approach is linked to a second NEO.
	ErrAlreadyLinked = errors.New("close approach already linked to another object")
)
