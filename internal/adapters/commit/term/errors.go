package term

import "errors"

// ErrNoScreen is returned when the surface has no screen to draw on.
var ErrNoScreen = errors.New("no terminal screen")
