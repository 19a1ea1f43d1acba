// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to conflicting state (e.g. deleting a show
// that already has signups).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a show
// that still has signups or removing a signup that is no longer
// pending. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrSignupNotFound indicates that a signup was not located in the DB.
var ErrSignupNotFound = errors.New("signup not found")

// ErrShowrunnerNotFound indicates the caller has no showrunner record.
var ErrShowrunnerNotFound = errors.New("showrunner not found")

// ErrProfileNotFound indicates the user has no profile row yet.
var ErrProfileNotFound = errors.New("profile not found")

// ErrDuplicateSignup is returned when a non-cancelled signup with the
// same normalized email already exists for the show.
var ErrDuplicateSignup = errors.New("duplicate signup")

// ErrNoChange indicates the UPDATE attempted to set fields equal to current values.
var ErrNoChange = errors.New("no change")
