package mount

import "errors"

// Sentinel errors.
var (
	ErrUnmounted = errors.New("mount: chart unmounted")
)
