package raster

import "errors"

var (
	// ErrEmptyScene is returned when a scene has no drawable area.
	ErrEmptyScene = errors.New("scene has no drawable area")
	// ErrFont is returned when a bundled face cannot be loaded.
	ErrFont = errors.New("load font")
)
