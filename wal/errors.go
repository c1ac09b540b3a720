package wal

import "errors"

// ErrWalIO is returned when the log cannot be opened, written, or
// read for reasons other than reaching a valid end-of-log.
var ErrWalIO = errors.New("wal: i/o failure")
