package errors

import "errors"

var (
	// ErrSeatUnavailable means the conditional update matched no row: the seat
	// is unknown or no longer available.
	ErrSeatUnavailable = errors.New("seat is not available")

	ErrUnsupportedDriver = errors.New("unsupported sql driver")
)
