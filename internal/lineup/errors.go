// Sentinel errors shared by the registry, status machine and allocation
// engine.  Handlers match on these with errors.Is to pick HTTP status
// codes: validation problems map to 400, duplicates and state conflicts
// to 409, configuration problems to 422.
package lineup

import "errors"

// ErrDuplicateEmail is returned when a non-cancelled signup with the
// same normalized email already exists for the show.
var ErrDuplicateEmail = errors.New("email already signed up for this show")

// ErrInvalidField is returned when a submitted value fails validation,
// such as an empty name or a set length the show does not offer.
var ErrInvalidField = errors.New("invalid field")

// ErrInvalidState is returned when an operation is illegal for the
// signup's current status, e.g. hard-deleting a confirmed signup.
var ErrInvalidState = errors.New("invalid state for operation")

// ErrInvalidStrategy is returned when a show's configured strategy is
// unknown, or when a strategy-specific operation (curated reorder) is
// invoked against a show using a different strategy.
var ErrInvalidStrategy = errors.New("invalid signup strategy")

// ErrInvalidConfig is returned by ShowConfig.Validate for broken show
// configuration, such as an empty set-length list.  Allocation for the
// show is blocked until the organizer fixes it.
var ErrInvalidConfig = errors.New("invalid show configuration")

// ErrNotFound is returned when a signup referenced by ID does not
// exist in the registry snapshot.
var ErrNotFound = errors.New("signup not found")
