package domain

import "errors"

// ErrNotFound means a direct lookup found no record. Query controllers show
// it as an empty result rather than a failure.
var ErrNotFound = errors.New("model run not found")
