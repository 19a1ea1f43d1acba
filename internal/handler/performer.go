package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/repository"
)

// PerformerHandler serves authenticated performer endpoints.
type PerformerHandler struct {
	Signups     *repository.SignupRepo
	Showrunners *repository.ShowrunnerRepo
}

func NewPerformerHandler(signups *repository.SignupRepo, showrunners *repository.ShowrunnerRepo) *PerformerHandler {
	if signups == nil || showrunners == nil {
		panic("nil repository passed to NewPerformerHandler")
	}
	return &PerformerHandler{Signups: signups, Showrunners: showrunners}
}

// MySignups lists every signup recorded under the caller's profile
// email, newest show first. Walk-up signups entered by an organizer
// with the same email show up here too.
func (h *PerformerHandler) MySignups(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Showrunners.GetProfileByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"signups": []repository.MySignupDetail{}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	details, err := h.Signups.ListByEmail(ctx, p.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list signups failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"signups": details})
}
