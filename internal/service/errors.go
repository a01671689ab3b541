// Package service holds the domain logic: signup/login, tweet mutations with
// creator-only permissions, and the follow graph. Handlers map the errors
// defined here onto redirects, re-rendered forms, and JSON error fields.
package service

import (
	"errors"

	"fritter/internal/store"
)

var (
	// ErrNotFound mirrors the store sentinel so callers only import service.
	ErrNotFound = store.ErrNotFound

	// ErrBadCredentials covers both an unknown username and a wrong
	// password; callers cannot tell the two apart.
	ErrBadCredentials = errors.New("credentials not found")

	// ErrNotCreator is returned when the caller is not the tweet's creator.
	ErrNotCreator = errors.New("not the tweet creator")
)

// ValidationError reports a field value that fails its constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
