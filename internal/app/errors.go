package service

import "errors"

// Sentinel errors returned by panel and render operations.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrPanelNotFound = errors.New("panel not found")
	ErrPanelLimit    = errors.New("panel limit reached")
	ErrPanelPinned   = errors.New("panel is pinned")
	ErrUnknownChart  = errors.New("unknown chart kind")
	ErrInvalidWidth  = errors.New("invalid container width")
	ErrInvalidFormat = errors.New("invalid output format")
)
