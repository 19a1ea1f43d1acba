package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/model"
	"github.com/stagelist/stagelist/internal/queue"
	"github.com/stagelist/stagelist/internal/repository"
	queue_publisher "github.com/stagelist/stagelist/internal/service"
)

type reorderReq struct {
	Order []uint64 `json:"order"`
}

type allocateReq struct {
	Seed   int64 `json:"seed"`
	Redraw bool  `json:"redraw"`
}

type assignmentResp struct {
	SignupID uint64 `json:"signup_id"`
	Position int    `json:"lineup_position"`
	Status   string `json:"status"`
}

type allocateResp struct {
	ShowID      uint64           `json:"show_id"`
	Strategy    string           `json:"strategy"`
	LineupEpoch uint64           `json:"lineup_epoch"`
	Assignments []assignmentResp `json:"assignments"`
	Overflow    []uint64         `json:"overflow,omitempty"`
}

func toAllocateResp(show *model.Show, epoch uint64, res lineup.Result) allocateResp {
	out := allocateResp{
		ShowID:      show.ID,
		Strategy:    show.SignupStrategy,
		LineupEpoch: epoch,
		Overflow:    res.Overflow,
	}
	for _, a := range res.Assignments {
		out.Assignments = append(out.Assignments, assignmentResp{
			SignupID: a.SignupID,
			Position: a.Position,
			Status:   string(a.Status),
		})
	}
	return out
}

// commitResult persists an engine result inside the caller's
// transaction: clear every active position, write the new assignments
// and bump the show's lineup epoch. The caller still owns the commit.
func (h *OrganizerHandler) commitResult(ctx context.Context, tx *sql.Tx, show *model.Show, res lineup.Result) (uint64, error) {
	if err := h.Signups.ClearActivePositionsTx(ctx, tx, show.ID); err != nil {
		return 0, err
	}
	ids := make([]uint64, 0, len(res.Assignments))
	positions := make([]int, 0, len(res.Assignments))
	statuses := make([]string, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		ids = append(ids, a.SignupID)
		positions = append(positions, a.Position)
		statuses = append(statuses, string(a.Status))
	}
	if err := h.Signups.ApplyAssignmentsTx(ctx, tx, show.ID, ids, positions, statuses); err != nil {
		return 0, err
	}
	newEpoch := show.LineupEpoch + 1
	if err := h.Shows.CommitAllocationTx(ctx, tx, show.ID, newEpoch); err != nil {
		return 0, err
	}
	return newEpoch, nil
}

// Reorder applies an organizer-supplied ordering to a curated show.
// Positions 1..N follow the submitted ID list; IDs placed beyond
// capacity are reported as overflow but keep their status.
func (h *OrganizerHandler) Reorder(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req reorderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
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

	show, err := h.Shows.GetForUpdateTx(ctx, tx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	if show.ShowrunnerID != sr.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	rows, err := h.Signups.ListByShowTx(ctx, tx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signups failed"})
	}
	res, err := lineup.Reorder(engineSnapshot(rows), engineConfig(show), req.Order)
	if err != nil {
		switch {
		case errors.Is(err, lineup.ErrInvalidStrategy):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reorder requires the curated strategy"})
		case errors.Is(err, lineup.ErrNotFound), errors.Is(err, lineup.ErrInvalidField), errors.Is(err, lineup.ErrInvalidState):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reorder failed"})
		}
	}
	epoch, err := h.commitResult(ctx, tx, show, res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persist lineup failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, toAllocateResp(show, epoch, res))
}

// Allocate runs the show's allocation strategy over the current signups
// and commits the resulting lineup atomically. For bucket shows the
// request carries the draw seed and an optional redraw flag; numbered
// and curated shows ignore both. A lineup.allocated event is published
// after the commit.
func (h *OrganizerHandler) Allocate(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req allocateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
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

	show, err := h.Shows.GetForUpdateTx(ctx, tx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	if show.ShowrunnerID != sr.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	rows, err := h.Signups.ListByShowTx(ctx, tx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signups failed"})
	}
	res, err := lineup.Allocate(engineSnapshot(rows), engineConfig(show), lineup.AllocateOptions{
		Seed:   req.Seed,
		Redraw: req.Redraw,
	})
	if err != nil {
		if errors.Is(err, lineup.ErrInvalidConfig) || errors.Is(err, lineup.ErrInvalidStrategy) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "allocation failed"})
	}
	epoch, err := h.commitResult(ctx, tx, show, res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "persist lineup failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	confirmed, waitlisted := 0, 0
	for _, a := range res.Assignments {
		switch a.Status {
		case lineup.StatusConfirmed:
			confirmed++
		case lineup.StatusWaitlist:
			waitlisted++
		}
	}
	ev := queue.LineupAllocatedEvent{
		ShowID:      show.ID,
		ShowTitle:   show.Title,
		Strategy:    show.SignupStrategy,
		Epoch:       epoch,
		Confirmed:   confirmed,
		Waitlisted:  waitlisted,
		AllocatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue_publisher.PublishLineupAllocated(context.Background(), ev) }()

	return c.JSON(http.StatusOK, toAllocateResp(show, epoch, res))
}

// GetLineup returns the organizer's view of a show's lineup: the
// grouped projection plus the raw signups (including emails and notes).
// With include_inactive=true, cancelled and no-show signups appear at
// the bottom for audit.
func (h *OrganizerHandler) GetLineup(c echo.Context) error {
	showID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	includeInactive := c.QueryParam("include_inactive") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}

	show, err := h.Shows.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	if show.ShowrunnerID != sr.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	rows, err := h.Signups.ListByShow(ctx, showID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load signups failed"})
	}
	snapshot := engineSnapshot(rows)
	signupDetails := make([]signupResp, 0, len(rows))
	for i := range rows {
		if !includeInactive && !lineup.Status(rows[i].Status).Active() {
			continue
		}
		signupDetails = append(signupDetails, toSignupResp(&rows[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":          show.ID,
		"lineup_epoch":     show.LineupEpoch,
		"needs_allocation": show.NeedsAllocation,
		"lineup":           lineup.Grouped(snapshot, includeInactive),
		"signups":          signupDetails,
	})
}
