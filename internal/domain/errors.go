package domain

import "errors"

var (
	// ErrInvalidCoordinate reports a latitude or longitude outside its
	// valid range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrInvalidRadius reports a non-positive search radius.
	ErrInvalidRadius = errors.New("search radius must be positive")
)
