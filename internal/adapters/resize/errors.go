package resize

import "errors"

// Sentinel errors. ErrClosed is reported by Subscription.Err.
var (
	ErrClosed      = errors.New("resize: observer closed")
	ErrNoScreen    = errors.New("resize: screen not initialized")
	ErrMeasurement = errors.New("resize: measurement failed")
)
