package task

import "errors"

// ErrNoTarget is returned by New when no view target is supplied.
var ErrNoTarget = errors.New("task: view target is required")
