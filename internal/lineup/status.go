package lineup

import "fmt"

// Transition moves a signup to the given status.  Organizer overrides
// are unrestricted at the state level, so no pair of statuses is
// illegal; the only failure mode is an unknown target status.
//
// Two side effects keep position data honest:
//
//   - leaving an active status for cancelled or no_show clears the
//     signup's position (the slot is freed permanently);
//   - re-activating a cancelled or no_show signup also clears any
//     stale position, so a fresh allocation pass must run before the
//     signup holds a slot again.
//
// The returned flag reports whether the change affected the eligible
// set or a held position, i.e. whether the show needs re-allocation
// under the numbered or bucket strategies.
func Transition(s *Signup, next Status) (bool, error) {
	if !next.Valid() {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidField, next)
	}
	prev := s.Status
	if next == prev {
		return false, nil
	}
	s.Status = next

	hadPosition := s.Position != nil
	switch {
	case prev.Active() && !next.Active():
		// Dropping out frees the slot for promotion.
		s.Position = nil
		return true, nil
	case !prev.Active() && next.Active():
		// A reactivated signup never silently regains its old slot.
		s.Position = nil
		return true, nil
	default:
		// Moves within the active set (e.g. pending -> confirmed) do
		// not change eligibility, but a held position may now disagree
		// with the status; let the engine reconcile.
		return hadPosition, nil
	}
}
