package lineup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry is the append-only signup store for a single show.  It
// enforces field validity and the one-non-cancelled-signup-per-email
// rule.  All methods are safe for concurrent use; the internal mutex
// also makes the duplicate check and the append a single atomic step,
// so two concurrent submissions with the same email cannot both pass.
type Registry struct {
	mu      sync.Mutex
	config  ShowConfig
	signups []*Signup
	nextID  uint64
	now     func() time.Time
}

// SubmitRequest carries the fields of a new signup.  Name and email are
// trimmed and the email lower-cased before validation.
type SubmitRequest struct {
	DisplayName string
	Email       string
	Type        SignupType
	SetLength   int
	Notes       string
	ProfileID   *uint64
}

// NewRegistry returns an empty registry for a show with the given
// configuration.  The configuration must already be validated.
func NewRegistry(cfg ShowConfig) *Registry {
	return &Registry{config: cfg, nextID: 1, now: time.Now}
}

// Config returns the show configuration the registry was built with.
func (r *Registry) Config() ShowConfig { return r.config }

// NewSignup validates a submission against the show's configuration and
// the existing signups, and returns the resulting record: normalized
// fields, pending status, no position, CreatedAt stamped from the given
// instant.  It is the single source of the field, window and
// duplicate-email rules; the Registry and the persistence path both go
// through it so the two surfaces cannot drift.
//
// It returns ErrInvalidField for a blank name, a malformed email, an
// unknown signup type or a set length the show does not offer;
// ErrInvalidState when the signup window is closed at now; and
// ErrDuplicateEmail when a non-cancelled signup in existing already
// holds the normalized email.
func NewSignup(cfg ShowConfig, existing []*Signup, req SubmitRequest, now time.Time) (*Signup, error) {
	name := strings.TrimSpace(req.DisplayName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrInvalidField)
	}
	if email == "" || !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidField)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown signup type %q", ErrInvalidField, req.Type)
	}
	if !cfg.AllowsSetLength(req.SetLength) {
		return nil, fmt.Errorf("%w: set length %d is not offered", ErrInvalidField, req.SetLength)
	}
	if !cfg.WindowOpen(now) {
		return nil, fmt.Errorf("%w: the signup window is closed", ErrInvalidState)
	}
	for _, s := range existing {
		if s.Email == email && s.Status != StatusCancelled {
			return nil, ErrDuplicateEmail
		}
	}
	return &Signup{
		ProfileID:   req.ProfileID,
		DisplayName: name,
		Email:       email,
		Type:        req.Type,
		SetLength:   req.SetLength,
		Notes:       strings.TrimSpace(req.Notes),
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
	}, nil
}

// Submit validates and appends a new signup through NewSignup; see its
// documentation for the error contract.  The duplicate check and the
// append happen under the same lock, against a single clock reading, so
// two concurrent submissions with the same email cannot both pass and a
// signup is never stamped after the window it was admitted under.
func (r *Registry) Submit(req SubmitRequest) (*Signup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := NewSignup(r.config, r.signups, req, r.now())
	if err != nil {
		return nil, err
	}
	s.ID = r.nextID
	r.nextID++
	r.signups = append(r.signups, s)
	return s.clone(), nil
}

// Remove hard-deletes a signup.  Deletion is only permitted while the
// signup is still pending; anything further along must be cancelled
// through the status machine so its record is retained for audit.
func (r *Registry) Remove(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.signups {
		if s.ID != id {
			continue
		}
		if s.Status != StatusPending {
			return fmt.Errorf("%w: only pending signups can be deleted", ErrInvalidState)
		}
		r.signups = append(r.signups[:i], r.signups[i+1:]...)
		return nil
	}
	return ErrNotFound
}

// Get returns a copy of the signup with the given ID.
func (r *Registry) Get(id uint64) (*Signup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.signups {
		if s.ID == id {
			return s.clone(), nil
		}
	}
	return nil, ErrNotFound
}

// List returns copies of all signups in arrival order (created_at
// ascending, ID as tie-break).  This is the canonical base ordering the
// allocation engine consumes.
func (r *Registry) List() []*Signup {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Signup, 0, len(r.signups))
	for _, s := range r.signups {
		out = append(out, s.clone())
	}
	sortByArrival(out)
	return out
}

// Transition routes a status change through the status machine under
// the registry lock and returns the updated signup plus whether the
// show now needs a fresh allocation pass.
func (r *Registry) Transition(id uint64, next Status) (*Signup, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.signups {
		if s.ID == id {
			needs, err := Transition(s, next)
			if err != nil {
				return nil, false, err
			}
			return s.clone(), needs, nil
		}
	}
	return nil, false, ErrNotFound
}

// Apply writes an allocation result back into the registry.  Positions
// not covered by the result are cleared for eligible signups so a
// shrinking lineup leaves no stale numbers behind.
func (r *Registry) Apply(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applyResult(r.signups, res)
}

// sortByArrival orders signups by created_at ascending with ID as the
// tie-break, keeping the order stable when timestamps collide.
func sortByArrival(signups []*Signup) {
	sort.SliceStable(signups, func(i, j int) bool {
		if signups[i].CreatedAt.Equal(signups[j].CreatedAt) {
			return signups[i].ID < signups[j].ID
		}
		return signups[i].CreatedAt.Before(signups[j].CreatedAt)
	})
}
