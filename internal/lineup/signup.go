package lineup

import "time"

// Signup is a single performer's request for a slot in a show.  The
// email is stored lower-cased and acts as the duplicate key among
// non-cancelled signups.  Position is nil until an allocation pass (or
// a curated reorder) assigns one.
//
// Fields:
//  ID          – identifier, unique within the registry.
//  ShowID      – owning show.
//  ProfileID   – linked performer profile, when the email matched one.
//  DisplayName – name shown on the lineup.
//  Email       – normalized (lower-case, trimmed) contact address.
//  Type        – online or in_person.
//  SetLength   – preferred set length in minutes; must be one of the
//                show's SetLengthOptions at submission time.
//  Notes       – free-form organizer-visible notes.
//  Status      – lifecycle state, mutated only via Transition.
//  Position    – lineup position; nil until allocated.
//  CreatedAt   – arrival time; the ordering key for every strategy.
type Signup struct {
	ID          uint64
	ShowID      uint64
	ProfileID   *uint64
	DisplayName string
	Email       string
	Type        SignupType
	SetLength   int
	Notes       string
	Status      Status
	Position    *int
	CreatedAt   time.Time
}

// Eligible reports whether the signup participates in allocation.
func (s *Signup) Eligible() bool { return s.Status.Active() }

// clone returns a shallow copy with its own Position pointer, so that
// engine results never alias registry state.
func (s *Signup) clone() *Signup {
	cp := *s
	if s.Position != nil {
		p := *s.Position
		cp.Position = &p
	}
	return &cp
}
