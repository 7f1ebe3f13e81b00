package repositories

import "errors"

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock is returned when a conditional stock decrement matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDuplicate is returned when a write would break a unique column, such as a watch reference.
	ErrDuplicate = errors.New("duplicate record")
)
