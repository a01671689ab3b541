// Package store implements the sqlite persistence layer. Follow and favorite
// relationships live in composite-key tables; counts are derived from those
// tables at read time, never stored.
package store

import "errors"

// ErrNotFound is returned when a referenced user or tweet id does not exist.
// Callers should match it with errors.Is.
var ErrNotFound = errors.New("not found")
