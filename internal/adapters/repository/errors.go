package repository

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrNotFound = errors.New("player not found")
	ErrNoSource = errors.New("no table sources configured")
)
