// Package lineup implements the signup lifecycle and lineup allocation
// engine for a show.  It is a pure in-memory core: callers supply a
// snapshot of signups plus the show's configuration and receive the
// computed ordering back to persist.  The package performs no I/O and
// holds no global state, which keeps allocation deterministic and
// directly testable.
package lineup

import (
	"fmt"
	"strings"
)

// Strategy selects how signups are converted into an ordered lineup.
// The zero value is not valid; use ParseStrategy for external input.
type Strategy string

const (
	// StrategyCurated leaves ordering entirely to the organizer.  The
	// engine assigns positions only through explicit reorder calls.
	StrategyCurated Strategy = "curated"
	// StrategyNumbered interleaves signups by type: in-person signups
	// take odd positions and online signups take even positions, each
	// in arrival order.
	StrategyNumbered Strategy = "numbered"
	// StrategyBucket runs a seeded lottery over all eligible signups.
	StrategyBucket Strategy = "bucket"
)

// Valid reports whether the strategy is one of the known variants.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyCurated, StrategyNumbered, StrategyBucket:
		return true
	}
	return false
}

// ParseStrategy normalizes and validates a strategy string coming from
// a request body or a database column.
func ParseStrategy(raw string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidStrategy, raw)
	}
	return s, nil
}

// SignupType distinguishes pre-registered online signups from walk-ups
// entered at the door.  The numbered strategy keys its parity split on
// this value.
type SignupType string

const (
	TypeOnline   SignupType = "online"
	TypeInPerson SignupType = "in_person"
)

// Valid reports whether the signup type is a known variant.
func (t SignupType) Valid() bool {
	return t == TypeOnline || t == TypeInPerson
}

// ParseSignupType normalizes and validates a signup type string.
func ParseSignupType(raw string) (SignupType, error) {
	t := SignupType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown signup type %q", ErrInvalidField, raw)
	}
	return t, nil
}

// Status is the lifecycle state of a single signup.  Transitions are
// governed by Transition; code must never write a Status directly.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusWaitlist  Status = "waitlist"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Valid reports whether the status is a known variant.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusWaitlist, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the status keeps the signup in the running for
// a lineup position.  Cancelled and no-show signups are retained for
// audit but excluded from all allocation passes.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusWaitlist:
		return true
	}
	return false
}

// ParseStatus normalizes and validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidField, raw)
	}
	return s, nil
}

// ShowStatus is the lifecycle state of a show itself, from creation
// through the signup window to the night of the event.
type ShowStatus string

const (
	ShowDraft     ShowStatus = "draft"
	ShowOpen      ShowStatus = "open"
	ShowClosed    ShowStatus = "closed"
	ShowCompleted ShowStatus = "completed"
)

// Valid reports whether the show status is a known variant.
func (s ShowStatus) Valid() bool {
	switch s {
	case ShowDraft, ShowOpen, ShowClosed, ShowCompleted:
		return true
	}
	return false
}

// ParseShowStatus normalizes and validates a show status string.
func ParseShowStatus(raw string) (ShowStatus, error) {
	s := ShowStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown show status %q", ErrInvalidField, raw)
	}
	return s, nil
}
