package models

import "errors"

var (
	// ErrNotFound is returned by stores when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a write would break a uniqueness rule.
	ErrConflict = errors.New("conflict")
)
