package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/model"
	"github.com/stagelist/stagelist/internal/repository"
)

// ----- DTOs -----

type showReq struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Venue            *string `json:"venue"`
	Address          *string `json:"address"`
	ShowDate         *string `json:"show_date"`
	ShowTime         *string `json:"show_time"`
	DoorsTime        *string `json:"doors_time"`
	SignupStrategy   *string `json:"signup_strategy"`
	MaxSignups       *int    `json:"max_signups"`
	SetLengthOptions []int   `json:"set_length_options"`
	Status           *string `json:"status"`
}

type showResp struct {
	ID               uint64  `json:"id"`
	ShowrunnerID     uint64  `json:"showrunner_id"`
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	Venue            *string `json:"venue,omitempty"`
	Address          *string `json:"address,omitempty"`
	ShowDate         string  `json:"show_date"`
	ShowTime         *string `json:"show_time,omitempty"`
	DoorsTime        *string `json:"doors_time,omitempty"`
	SignupStrategy   string  `json:"signup_strategy"`
	MaxSignups       *int    `json:"max_signups,omitempty"`
	SetLengthOptions []int   `json:"set_length_options"`
	Status           string  `json:"status"`
	LineupEpoch      uint64  `json:"lineup_epoch"`
	NeedsAllocation  bool    `json:"needs_allocation"`
}

func toShowResp(s *model.Show) showResp {
	return showResp{
		ID:               s.ID,
		ShowrunnerID:     s.ShowrunnerID,
		Title:            s.Title,
		Description:      s.Description,
		Venue:            s.Venue,
		Address:          s.Address,
		ShowDate:         s.ShowDate,
		ShowTime:         s.ShowTime,
		DoorsTime:        s.DoorsTime,
		SignupStrategy:   s.SignupStrategy,
		MaxSignups:       s.MaxSignups,
		SetLengthOptions: s.SetLengthOptions,
		Status:           s.Status,
		LineupEpoch:      s.LineupEpoch,
		NeedsAllocation:  s.NeedsAllocation,
	}
}

// CreateShow creates a new draft show owned by the calling showrunner.
// Strategy and set-length options are validated through the allocation
// engine's config rules before anything is persisted.
func (h *OrganizerHandler) CreateShow(c echo.Context) error {
	var req showReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	if req.ShowDate == nil || strings.TrimSpace(*req.ShowDate) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "show_date required"})
	}
	strategyRaw := "numbered"
	if req.SignupStrategy != nil {
		strategyRaw = *req.SignupStrategy
	}
	strategy, err := lineup.ParseStrategy(strategyRaw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signup_strategy"})
	}
	cfg := lineup.ShowConfig{Strategy: strategy, SetLengthOptions: req.SetLengthOptions}
	if req.MaxSignups != nil {
		cfg.MaxSignups = *req.MaxSignups
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}

	show := &model.Show{
		ShowrunnerID:     sr.ID,
		Title:            strings.TrimSpace(*req.Title),
		Description:      req.Description,
		Venue:            req.Venue,
		Address:          req.Address,
		ShowDate:         strings.TrimSpace(*req.ShowDate),
		ShowTime:         req.ShowTime,
		DoorsTime:        req.DoorsTime,
		SignupStrategy:   string(strategy),
		MaxSignups:       req.MaxSignups,
		SetLengthOptions: cfg.SetLengthOptions,
	}
	if err := h.Shows.Create(ctx, show); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create show failed"})
	}
	return c.JSON(http.StatusCreated, toShowResp(show))
}

// UpdateShow applies a partial update to one of the caller's shows.
// Strategy and set-length options become immutable once any signup
// exists; changing them mid-collection would reinterpret positions
// already handed out.
func (h *OrganizerHandler) UpdateShow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req showReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}

	show, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	if show.ShowrunnerID != sr.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	// Strategy never changes once signups exist; set lengths stay
	// editable only on curated shows, where positions are hand-assigned
	// and do not derive from the configuration.
	strategyChanged := req.SignupStrategy != nil && *req.SignupStrategy != show.SignupStrategy
	setLengthsChanged := req.SetLengthOptions != nil && !equalInts(req.SetLengthOptions, show.SetLengthOptions)
	setLengthsLocked := setLengthsChanged && show.SignupStrategy != string(lineup.StrategyCurated)
	if strategyChanged || setLengthsLocked {
		n, err := h.Shows.CountSignups(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count signups failed"})
		}
		if n > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "strategy and set lengths are locked once signups exist"})
		}
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
		}
		show.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		show.Description = req.Description
	}
	if req.Venue != nil {
		show.Venue = req.Venue
	}
	if req.Address != nil {
		show.Address = req.Address
	}
	if req.ShowDate != nil {
		show.ShowDate = strings.TrimSpace(*req.ShowDate)
	}
	if req.ShowTime != nil {
		show.ShowTime = req.ShowTime
	}
	if req.DoorsTime != nil {
		show.DoorsTime = req.DoorsTime
	}
	if req.SignupStrategy != nil {
		strategy, err := lineup.ParseStrategy(*req.SignupStrategy)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signup_strategy"})
		}
		show.SignupStrategy = string(strategy)
	}
	if req.MaxSignups != nil {
		if *req.MaxSignups < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_signups must not be negative"})
		}
		show.MaxSignups = req.MaxSignups
	}
	if req.SetLengthOptions != nil {
		show.SetLengthOptions = req.SetLengthOptions
	}
	if req.Status != nil {
		st, err := lineup.ParseShowStatus(*req.Status)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		show.Status = string(st)
	}

	cfg := engineConfig(show)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	show.SetLengthOptions = cfg.SetLengthOptions

	if err := h.Shows.UpdateByIDAndOwner(ctx, show, sr.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoChange):
			// Identical values; fall through and return the current row.
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update show failed"})
		}
	}
	updated, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}
	return c.JSON(http.StatusOK, toShowResp(updated))
}

// ListMyShows returns every show owned by the calling showrunner.
func (h *OrganizerHandler) ListMyShows(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}
	shows, err := h.Shows.ListByShowrunner(ctx, sr.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list shows failed"})
	}
	out := make([]showResp, 0, len(shows))
	for i := range shows {
		out = append(out, toShowResp(&shows[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"shows": out})
}

// DeleteShow removes a draft show with no signups. Shows that have
// opened or collected signups cannot be deleted, only closed.
func (h *OrganizerHandler) DeleteShow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sr := h.requireShowrunner(c, ctx)
	if sr == nil {
		return nil
	}
	if err := h.Shows.DeleteByIDAndOwner(ctx, id, sr.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "only empty draft shows can be deleted"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete show failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
