package ingest

import "errors"

// ErrReadTable is returned when a table exists but cannot be parsed.
var ErrReadTable = errors.New("read table")
