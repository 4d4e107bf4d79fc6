package router

import (
	"errors"
	"fmt"
)

// Routing errors.
var (
	ErrNoMatchingRoute   = errors.New("no matching route")
	ErrUnknownRoute      = errors.New("unknown route name")
	ErrInvalidRoute      = errors.New("invalid route definition")
	ErrInvalidParam      = errors.New("invalid route parameter")
	ErrNavigationAborted = errors.New("navigation aborted")
)

// NoMatchError reports a path that no route definition matches.
// It satisfies errors.Is(err, ErrNoMatchingRoute).
type NoMatchError struct {
	// Path is the canonical path that was matched, after redirects
	Path string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching route for %q", e.Path)
}

// Is implements errors.Is support.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatchingRoute
}

// Abort returns an error that stops a navigation from inside a guard.
func Abort(reason string) error {
	return fmt.Errorf("%w: %s", ErrNavigationAborted, reason)
}
