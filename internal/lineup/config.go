package lineup

import (
	"fmt"
	"sort"
	"time"
)

// ShowConfig is the immutable per-show configuration the engine reads.
// Strategy and SetLengthOptions must not change once signups exist
// against the numbered or bucket strategies; re-interpreting them
// mid-collection would corrupt the ordering.  Enforcement of that rule
// lives with the caller that owns show updates.
//
// Fields:
//  Strategy         – allocation strategy (curated, numbered, bucket).
//  MaxSignups       – confirmed-signup capacity; 0 means unlimited.
//  SetLengthOptions – allowed set lengths in minutes, ascending.
//  OpensAt/ClosesAt – signup window; zero values leave the window
//                     unbounded on that side.
type ShowConfig struct {
	Strategy         Strategy
	MaxSignups       int
	SetLengthOptions []int
	OpensAt          time.Time
	ClosesAt         time.Time
}

// Validate checks the configuration for problems that would make
// allocation meaningless.  It returns ErrInvalidStrategy for an unknown
// strategy and ErrInvalidConfig for an empty or non-positive set-length
// list or a negative capacity.
func (c ShowConfig) Validate() error {
	if !c.Strategy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStrategy, c.Strategy)
	}
	if c.MaxSignups < 0 {
		return fmt.Errorf("%w: max_signups must not be negative", ErrInvalidConfig)
	}
	if len(c.SetLengthOptions) == 0 {
		return fmt.Errorf("%w: set_length_options must not be empty", ErrInvalidConfig)
	}
	for _, n := range c.SetLengthOptions {
		if n <= 0 {
			return fmt.Errorf("%w: set length %d is not positive", ErrInvalidConfig, n)
		}
	}
	return nil
}

// Normalize sorts the set-length options ascending and drops
// duplicates.  Callers should normalize before persisting a config so
// list order is stable across reads.
func (c *ShowConfig) Normalize() {
	sort.Ints(c.SetLengthOptions)
	out := c.SetLengthOptions[:0]
	for i, n := range c.SetLengthOptions {
		if i == 0 || n != c.SetLengthOptions[i-1] {
			out = append(out, n)
		}
	}
	c.SetLengthOptions = out
}

// AllowsSetLength reports whether the given set length is one of the
// show's offered options.
func (c ShowConfig) AllowsSetLength(minutes int) bool {
	for _, n := range c.SetLengthOptions {
		if n == minutes {
			return true
		}
	}
	return false
}

// Unlimited reports whether the show has no confirmed-signup capacity.
func (c ShowConfig) Unlimited() bool { return c.MaxSignups == 0 }

// WindowOpen reports whether signups are being accepted at the given
// instant.  A zero OpensAt or ClosesAt leaves that side unbounded.
func (c ShowConfig) WindowOpen(now time.Time) bool {
	if !c.OpensAt.IsZero() && now.Before(c.OpensAt) {
		return false
	}
	if !c.ClosesAt.IsZero() && now.After(c.ClosesAt) {
		return false
	}
	return true
}
