package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/model"
	"github.com/stagelist/stagelist/internal/repository"
)

// ----- DTOs shared by the public and organizer signup endpoints -----

type signupReq struct {
	DisplayName        string  `json:"display_name"`
	Email              string  `json:"email"`
	SignupType         string  `json:"signup_type"`
	PreferredSetLength int     `json:"preferred_set_length"`
	Notes              *string `json:"notes"`
}

type signupResp struct {
	ID                 uint64  `json:"id"`
	ShowID             uint64  `json:"show_id"`
	DisplayName        string  `json:"display_name"`
	Email              string  `json:"email"`
	SignupType         string  `json:"signup_type"`
	PreferredSetLength int     `json:"preferred_set_length"`
	Notes              *string `json:"notes,omitempty"`
	Status             string  `json:"status"`
	LineupPosition     *int    `json:"lineup_position,omitempty"`
}

func toSignupResp(s *model.Signup) signupResp {
	return signupResp{
		ID:                 s.ID,
		ShowID:             s.ShowID,
		DisplayName:        s.DisplayName,
		Email:              s.Email,
		SignupType:         s.SignupType,
		PreferredSetLength: s.PreferredSetLength,
		Notes:              s.Notes,
		Status:             s.Status,
		LineupPosition:     s.LineupPosition,
	}
}

// submitSignup runs the whole signup transaction: lock the show row,
// snapshot its signups and pass request plus snapshot through
// lineup.NewSignup, which owns the field, window and duplicate-email
// rules. On success it links a profile when the email matches one,
// inserts the row and flags the show for reallocation. Owner, when
// non-nil, must match the show's showrunner (organizer-entered
// signups); requireOpen enforces the show being open for public
// self-signups.
//
// Errors returned: repository.ErrShowNotFound, repository.ErrForbidden,
// lineup.ErrDuplicateEmail (repository.ErrDuplicateSignup from the
// insert-time backstop), lineup.ErrInvalidField, lineup.ErrInvalidState
// (show not accepting signups).
func submitSignup(
	ctx context.Context,
	shows *repository.ShowRepo,
	signups *repository.SignupRepo,
	showrunners *repository.ShowrunnerRepo,
	showID uint64,
	req signupReq,
	fallbackType lineup.SignupType,
	requireOpen bool,
	owner *model.Showrunner,
) (*model.Signup, error) {
	typ := fallbackType
	if strings.TrimSpace(req.SignupType) != "" {
		parsed, err := lineup.ParseSignupType(req.SignupType)
		if err != nil {
			return nil, err
		}
		typ = parsed
	}

	tx, err := shows.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	show, err := shows.GetForUpdateTx(ctx, tx, showID)
	if err != nil {
		return nil, err
	}
	if owner != nil && show.ShowrunnerID != owner.ID {
		err = repository.ErrForbidden
		return nil, err
	}
	if requireOpen && show.Status != string(lineup.ShowOpen) {
		err = fmt.Errorf("%w: show is not open for signups", lineup.ErrInvalidState)
		return nil, err
	}

	// The show row is locked, so this snapshot is the authoritative
	// dedup set until commit.
	existing, err := signups.ListByShowTx(ctx, tx, show.ID)
	if err != nil {
		return nil, err
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}
	es, err := lineup.NewSignup(engineConfig(show), engineSnapshot(existing), lineup.SubmitRequest{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Type:        typ,
		SetLength:   req.PreferredSetLength,
		Notes:       notes,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	m := &model.Signup{
		ShowID:             show.ID,
		DisplayName:        es.DisplayName,
		Email:              es.Email,
		SignupType:         string(es.Type),
		PreferredSetLength: es.SetLength,
		Status:             string(es.Status),
	}
	if req.Notes != nil {
		n := es.Notes
		m.Notes = &n
	}
	// Link to an existing performer account by email, if one exists.
	if p, perr := showrunners.GetProfileByEmail(ctx, es.Email); perr == nil {
		pid := p.ID
		m.ProfileID = &pid
	} else if !errors.Is(perr, repository.ErrProfileNotFound) {
		err = perr
		return nil, err
	}

	if err = signups.CreateTx(ctx, tx, m); err != nil {
		return nil, err
	}
	// A new eligible signup invalidates the current lineup for the
	// automatic strategies.
	if show.SignupStrategy != string(lineup.StrategyCurated) {
		if err = shows.MarkNeedsAllocationTx(ctx, tx, show.ID); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}
