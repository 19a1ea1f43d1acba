package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/queue"
	"github.com/stagelist/stagelist/internal/repository"
	queue_publisher "github.com/stagelist/stagelist/internal/service"
)

// AddSignup records an organizer-entered signup, typically a walk-up at
// the door. The signup type defaults to in_person; the show does not
// need to be open since the organizer can always add people.
func (h *OrganizerHandler) AddSignup(c echo.Context) error {
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

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}

	s, err := submitSignup(ctx, h.Shows, h.Signups, h.Showrunners, showID, req, lineup.TypeInPerson, false, sr)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
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

type statusReq struct {
	Status string `json:"status"`
}

// ChangeStatus moves a signup to a new lifecycle status. Any pair of
// states is allowed; the transition clears the lineup position whenever
// the signup leaves or re-enters the active set and, for the automatic
// strategies, flags the show for reallocation. A transition into
// confirmed publishes a signup.confirmed event.
func (h *OrganizerHandler) ChangeStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signup id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	next, err := lineup.ParseStatus(req.Status)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}

	// The first read only resolves which show row to lock.
	stale, err := h.Signups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSignupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "signup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signup failed"})
	}

	tx, err := h.Shows.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the show row so the transition serializes with allocation
	// runs and other writes against the same show.
	show, err := h.Shows.GetForUpdateTx(ctx, tx, stale.ShowID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	if show.ShowrunnerID != sr.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	// Re-read under the lock: an allocation that committed between the
	// first read and here may have assigned a position this transition
	// must not clobber.
	signup, err := h.Signups.GetByIDTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSignupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "signup not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signup failed"})
	}

	es := engineSignup(signup)
	needsRealloc, err := lineup.Transition(es, next)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Signups.UpdateStatusTx(ctx, tx, id, string(es.Status), es.Position); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	if needsRealloc && show.SignupStrategy != string(lineup.StrategyCurated) {
		if err := h.Shows.MarkNeedsAllocationTx(ctx, tx, show.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "flag show failed"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	signup.Status = string(es.Status)
	signup.LineupPosition = es.Position

	if es.Status == lineup.StatusConfirmed {
		ev := queue.SignupConfirmedEvent{
			SignupID:    signup.ID,
			ShowID:      show.ID,
			ShowTitle:   show.Title,
			ShowDate:    show.ShowDate,
			DisplayName: signup.DisplayName,
			SignupType:  signup.SignupType,
			Position:    signup.LineupPosition,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = queue_publisher.PublishSignupConfirmed(context.Background(), ev) }()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"signup":             toSignupResp(signup),
		"needs_reallocation": needsRealloc && show.SignupStrategy != string(lineup.StrategyCurated),
	})
}

// DeleteSignup hard-deletes a pending signup. Anything past pending is
// part of the show's history and must be cancelled instead.
func (h *OrganizerHandler) DeleteSignup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signup id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}
	if err := h.Signups.DeleteByIDForOwner(ctx, id, sr.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSignupNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "signup not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "only pending signups can be deleted"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete signup failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
