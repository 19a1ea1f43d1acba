package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/model"
	"github.com/stagelist/stagelist/internal/repository"
)

type showrunnerReq struct {
	VenueName string  `json:"venue_name"`
	Bio       *string `json:"bio"`
}

// CreateShowrunner promotes the calling organizer to showrunner,
// attaching the venue name displayed on every show they run. A profile
// is created from the account email when one does not exist yet.
func (h *OrganizerHandler) CreateShowrunner(c echo.Context) error {
	var req showrunnerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.VenueName = strings.TrimSpace(req.VenueName)
	if req.VenueName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Showrunners.GetProfileByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile required before becoming a showrunner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}

	sr := &model.Showrunner{ProfileID: p.ID, VenueName: req.VenueName, Bio: req.Bio}
	if err := h.Showrunners.CreateShowrunner(ctx, sr); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already a showrunner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showrunner failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         sr.ID,
		"venue_name": sr.VenueName,
		"bio":        sr.Bio,
	})
}
