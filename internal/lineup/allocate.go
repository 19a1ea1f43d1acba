package lineup

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
)

// Assignment is one computed lineup slot: the signup, the position it
// holds and the status the allocation implies (confirmed within
// capacity, waitlist beyond it).
type Assignment struct {
	SignupID uint64
	Position int
	Status   Status
}

// Result is the full output of an allocation pass.  Assignments are
// ordered by position.  Overflow lists curated signups ordered beyond
// capacity; curated trusts organizer judgment, so they are reported
// but never demoted.  The engine returns a Result without touching its
// inputs — the caller persists it, all-or-nothing.
type Result struct {
	Assignments []Assignment
	Overflow    []uint64
}

// AllocateOptions tunes a single allocation pass.  Seed drives the
// bucket strategy's deterministic draw and must be supplied explicitly;
// the engine never reads an ambient randomness source.  Redraw discards
// existing bucket positions for a full re-shuffle instead of the
// default append-only extension of the prior draw.
type AllocateOptions struct {
	Seed   int64
	Redraw bool
}

// Allocate computes positions and resulting statuses for every
// eligible signup in the snapshot under the show's strategy.  The
// snapshot is not mutated.  An empty eligible set is not an error; the
// result is simply empty.
func Allocate(snapshot []*Signup, cfg ShowConfig, opts AllocateOptions) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	eligible := eligibleByArrival(snapshot)
	switch cfg.Strategy {
	case StrategyCurated:
		return curatedResult(eligible, cfg), nil
	case StrategyNumbered:
		return allocateNumbered(eligible, cfg), nil
	case StrategyBucket:
		return allocateBucket(eligible, cfg, opts), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, cfg.Strategy)
	}
}

// Reorder assigns positions 1..N from an organizer-supplied ordering.
// Only curated shows accept it.  Every ID must reference a distinct
// eligible signup from the snapshot.  IDs beyond capacity are reported
// in Overflow without being demoted.
func Reorder(snapshot []*Signup, cfg ShowConfig, orderedIDs []uint64) (Result, error) {
	if cfg.Strategy != StrategyCurated {
		return Result{}, fmt.Errorf("%w: reorder requires the curated strategy", ErrInvalidStrategy)
	}
	byID := make(map[uint64]*Signup, len(snapshot))
	for _, s := range snapshot {
		byID[s.ID] = s
	}
	seen := make(map[uint64]bool, len(orderedIDs))
	var res Result
	for i, id := range orderedIDs {
		s, ok := byID[id]
		if !ok {
			return Result{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		if !s.Eligible() {
			return Result{}, fmt.Errorf("%w: signup %d is not eligible", ErrInvalidState, id)
		}
		if seen[id] {
			return Result{}, fmt.Errorf("%w: id %d listed twice", ErrInvalidField, id)
		}
		seen[id] = true
		pos := i + 1
		res.Assignments = append(res.Assignments, Assignment{
			SignupID: id,
			Position: pos,
			Status:   s.Status,
		})
		if !cfg.Unlimited() && pos > cfg.MaxSignups {
			res.Overflow = append(res.Overflow, id)
		}
	}
	return res, nil
}

// curatedResult reflects the current manual ordering back to the
// caller: positioned signups keep their position and status, and any
// positioned beyond capacity land in Overflow.
func curatedResult(eligible []*Signup, cfg ShowConfig) Result {
	var res Result
	positioned := make([]*Signup, 0, len(eligible))
	for _, s := range eligible {
		if s.Position != nil {
			positioned = append(positioned, s)
		}
	}
	sort.Slice(positioned, func(i, j int) bool { return *positioned[i].Position < *positioned[j].Position })
	for _, s := range positioned {
		res.Assignments = append(res.Assignments, Assignment{
			SignupID: s.ID,
			Position: *s.Position,
			Status:   s.Status,
		})
		if !cfg.Unlimited() && *s.Position > cfg.MaxSignups {
			res.Overflow = append(res.Overflow, s.ID)
		}
	}
	return res
}

// allocateNumbered implements the parity split: in-person signups fill
// odd positions and online signups fill even positions, each in arrival
// order.  Confirmed and pending signups keep their exact existing
// position whenever it is still legal for their parity; waitlisted and
// unpositioned signups fill the lowest free slots of their parity in
// arrival order, so a freed slot promotes the earliest waitlisted
// signup of the matching parity.  Positions whose numeric value exceeds
// capacity demote their holder to the waitlist instead of confirming.
func allocateNumbered(eligible []*Signup, cfg ShowConfig) Result {
	used := map[int]bool{}
	keep := map[uint64]int{}

	// First pass: retain held positions that still match the holder's
	// parity and are not claimed twice.  Iterating in arrival order
	// means the earlier arrival wins a conflict.  Waitlisted holders
	// never retain a position: keeping their over-capacity slot would
	// leave a freed low slot for the next fresh arrival to jump into.
	for _, s := range eligible {
		if s.Position == nil || s.Status == StatusWaitlist {
			continue
		}
		pos := *s.Position
		if pos < 1 || used[pos] || parityOf(s.Type) != pos%2 {
			continue
		}
		used[pos] = true
		keep[s.ID] = pos
	}

	// Second pass: unpositioned signups take the lowest free slot of
	// their parity, in arrival order.
	next := map[SignupType]int{TypeInPerson: 1, TypeOnline: 2}
	var res Result
	for _, s := range eligible {
		pos, ok := keep[s.ID]
		if !ok {
			pos = next[s.Type]
			for used[pos] {
				pos += 2
			}
			used[pos] = true
			next[s.Type] = pos + 2
		}
		res.Assignments = append(res.Assignments, Assignment{
			SignupID: s.ID,
			Position: pos,
			Status:   confirmOrWaitlist(pos, cfg),
		})
	}
	sortAssignments(res.Assignments)
	return res
}

// allocateBucket runs the seeded lottery.  Each signup's draw key is a
// hash of the seed and its ID, so a key never depends on which other
// signups are present: adding a new signup cannot reorder entries from
// an earlier draw.  By default, signups already holding positions keep
// their relative order and are compacted to the front, and new entrants
// join the tail in key order; a redraw ranks everyone by key from
// scratch (the same seed reproduces the same lineup).
func allocateBucket(eligible []*Signup, cfg ShowConfig, opts AllocateOptions) Result {
	held := make([]*Signup, 0, len(eligible))
	fresh := make([]*Signup, 0, len(eligible))
	for _, s := range eligible {
		if !opts.Redraw && s.Position != nil {
			held = append(held, s)
		} else {
			fresh = append(fresh, s)
		}
	}
	sort.Slice(held, func(i, j int) bool { return *held[i].Position < *held[j].Position })
	sort.SliceStable(fresh, func(i, j int) bool {
		ki, kj := drawKey(opts.Seed, fresh[i].ID), drawKey(opts.Seed, fresh[j].ID)
		if ki == kj {
			return fresh[i].ID < fresh[j].ID
		}
		return ki < kj
	})

	var res Result
	pos := 0
	for _, s := range append(held, fresh...) {
		pos++
		res.Assignments = append(res.Assignments, Assignment{
			SignupID: s.ID,
			Position: pos,
			Status:   confirmOrWaitlist(pos, cfg),
		})
	}
	return res
}

// drawKey derives the deterministic lottery rank for one signup.
func drawKey(seed int64, id uint64) uint64 {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(seed))
	binary.BigEndian.PutUint64(buf[8:], id)
	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}

// parityOf maps a signup type to its position parity under the
// numbered strategy: odd for walk-ups, even for online.
func parityOf(t SignupType) int {
	if t == TypeInPerson {
		return 1
	}
	return 0
}

// confirmOrWaitlist resolves the status a position implies under the
// show's capacity.
func confirmOrWaitlist(pos int, cfg ShowConfig) Status {
	if cfg.Unlimited() || pos <= cfg.MaxSignups {
		return StatusConfirmed
	}
	return StatusWaitlist
}

// eligibleByArrival filters the snapshot down to eligible signups in
// arrival order.
func eligibleByArrival(snapshot []*Signup) []*Signup {
	out := make([]*Signup, 0, len(snapshot))
	for _, s := range snapshot {
		if s.Eligible() {
			out = append(out, s)
		}
	}
	sortByArrival(out)
	return out
}

// sortAssignments orders assignments by position ascending.
func sortAssignments(a []Assignment) {
	sort.Slice(a, func(i, j int) bool { return a[i].Position < a[j].Position })
}

// applyResult writes a result onto the signups it references and
// clears positions of eligible signups the result does not cover.
func applyResult(signups []*Signup, res Result) {
	byID := make(map[uint64]Assignment, len(res.Assignments))
	for _, a := range res.Assignments {
		byID[a.SignupID] = a
	}
	for _, s := range signups {
		if a, ok := byID[s.ID]; ok {
			p := a.Position
			s.Position = &p
			s.Status = a.Status
		} else if s.Eligible() {
			s.Position = nil
		}
	}
}

// Apply writes the result onto the given snapshot.  It is a
// convenience for callers that hold plain slices rather than a
// Registry.
func (r Result) Apply(signups []*Signup) { applyResult(signups, r) }
