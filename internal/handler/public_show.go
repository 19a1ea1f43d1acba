package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/repository"
)

// PublicHandler serves the unauthenticated browse endpoints: open
// shows, show details, the public lineup and performer self-signup.
// These routes sit behind the response cache and the rate limiter.
type PublicHandler struct {
	Shows       *repository.ShowRepo
	Signups     *repository.SignupRepo
	Showrunners *repository.ShowrunnerRepo
}

func NewPublicHandler(shows *repository.ShowRepo, signups *repository.SignupRepo, showrunners *repository.ShowrunnerRepo) *PublicHandler {
	if shows == nil || signups == nil || showrunners == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Shows: shows, Signups: signups, Showrunners: showrunners}
}

// ListOpenShows returns shows currently accepting signups, ordered by
// show date. Only status=open is browsable; other values 400.
func (h *PublicHandler) ListOpenShows(c echo.Context) error {
	if st := c.QueryParam("status"); st != "" && st != "open" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only status=open is browsable"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	shows, err := h.Shows.ListOpen(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list shows failed"})
	}
	out := make([]showResp, 0, len(shows))
	for i := range shows {
		out = append(out, toShowResp(&shows[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": out})
}

// GetShow returns one show's public details along with the showrunner's
// venue name and bio.
func (h *PublicHandler) GetShow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	resp := echo.Map{"show": toShowResp(show)}
	if sr, err := h.Showrunners.GetByID(ctx, show.ShowrunnerID); err == nil {
		resp["showrunner"] = echo.Map{
			"venue_name": sr.VenueName,
			"bio":        sr.Bio,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetLineup returns the grouped public lineup for a show. Inactive
// signups, emails and organizer notes are never exposed here.
func (h *PublicHandler) GetLineup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	rows, err := h.Signups.ListByShow(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signups failed"})
	}
	view := lineup.Grouped(engineSnapshot(rows), false)
	stripNotes(view.Online)
	stripNotes(view.InPerson)
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":      show.ID,
		"lineup_epoch": show.LineupEpoch,
		"lineup":       view,
	})
}

// stripNotes blanks organizer-only notes before a view leaves the
// authenticated surface.
func stripNotes(entries []lineup.Entry) {
	for i := range entries {
		entries[i].Notes = ""
	}
}

// SubmitSignup records a performer self-signup on an open show. The
// signup type defaults to online; duplicate emails within the show's
// non-cancelled signups are rejected.
func (h *PublicHandler) SubmitSignup(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := submitSignup(ctx, h.Shows, h.Signups, h.Showrunners, showID, req, lineup.TypeOnline, true, nil)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, lineup.ErrDuplicateEmail), errors.Is(err, repository.ErrDuplicateSignup):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already signed up for this show"})
		case errors.Is(err, lineup.ErrInvalidField):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, lineup.ErrInvalidState):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create signup failed"})
		}
	}
	return c.JSON(http.StatusCreated, toSignupResp(s))
}
