package config

import "errors"

// Load wraps file, env and decode failures in ErrLoadConfig; Validate
// reports rejected values as ErrInvalidConfig.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
