package tooltip

import "errors"

// ErrReleased is returned when a released controller is used.
var ErrReleased = errors.New("tooltip: controller released")
