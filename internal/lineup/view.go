package lineup

import "sort"

// Entry is one row of a rendered lineup.  It is a plain data-transfer
// record with no behaviour; presentation layers serialize it directly.
type Entry struct {
	ID          uint64     `json:"id"`
	DisplayName string     `json:"display_name"`
	Type        SignupType `json:"signup_type"`
	SetLength   int        `json:"preferred_set_length"`
	Notes       string     `json:"notes,omitempty"`
	Status      Status     `json:"status"`
	Position    *int       `json:"lineup_position,omitempty"`
}

// View groups a lineup by signup type for the two-column display the
// organizer sees: pre-registered online signups next to walk-ups.
type View struct {
	Online   []Entry `json:"online"`
	InPerson []Entry `json:"in_person"`
}

// Grouped projects the snapshot into a View.  Within each group,
// positioned signups come first in position order, then unpositioned
// ones in arrival order.  Cancelled and no-show signups appear only
// when includeInactive is set (the audit view) and always sort last.
func Grouped(snapshot []*Signup, includeInactive bool) View {
	var v View
	for _, e := range projected(snapshot, includeInactive) {
		if e.Type == TypeOnline {
			v.Online = append(v.Online, e)
		} else {
			v.InPerson = append(v.InPerson, e)
		}
	}
	return v
}

// Merged projects the snapshot into a single position-ordered list.
func Merged(snapshot []*Signup, includeInactive bool) []Entry {
	return projected(snapshot, includeInactive)
}

func projected(snapshot []*Signup, includeInactive bool) []Entry {
	ordered := make([]*Signup, 0, len(snapshot))
	for _, s := range snapshot {
		if s.Eligible() || includeInactive {
			ordered = append(ordered, s)
		}
	}
	sortByArrival(ordered)
	sort.SliceStable(ordered, func(i, j int) bool {
		return viewRank(ordered[i]) < viewRank(ordered[j])
	})
	out := make([]Entry, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, Entry{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Type:        s.Type,
			SetLength:   s.SetLength,
			Notes:       s.Notes,
			Status:      s.Status,
			Position:    s.Position,
		})
	}
	return out
}

// viewRank orders a signup for display: by position when it has one,
// then unpositioned active signups, then inactive ones.  Ties fall
// back to the arrival order established before the sort.
func viewRank(s *Signup) int {
	switch {
	case s.Position != nil:
		return *s.Position
	case s.Eligible():
		return 1 << 30
	default:
		return 1<<30 + 1
	}
}
