package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagelist/stagelist/internal/lineup"
	"github.com/stagelist/stagelist/internal/model"
	"github.com/stagelist/stagelist/internal/repository"
)

// OrganizerHandler bundles repositories for showrunners to manage their
// shows, signups and lineups.
type OrganizerHandler struct {
	Shows       *repository.ShowRepo
	Signups     *repository.SignupRepo
	Showrunners *repository.ShowrunnerRepo
}

// NewOrganizerHandler constructs an OrganizerHandler and panics if any
// dependency is nil.
func NewOrganizerHandler(shows *repository.ShowRepo, signups *repository.SignupRepo, showrunners *repository.ShowrunnerRepo) *OrganizerHandler {
	if shows == nil || signups == nil || showrunners == nil {
		panic("nil repository passed to NewOrganizerHandler")
	}
	return &OrganizerHandler{Shows: shows, Signups: signups, Showrunners: showrunners}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// requireShowrunner resolves the calling user's showrunner record. It
// writes the error response itself and returns nil when the caller is
// not a showrunner yet.
func (h *OrganizerHandler) requireShowrunner(c echo.Context, ctx context.Context) *model.Showrunner {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return nil
	}
	sr, err := h.Showrunners.GetByUserID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrShowrunnerNotFound) {
			_ = c.JSON(http.StatusForbidden, echo.Map{"error": "showrunner profile required"})
			return nil
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load showrunner failed"})
		return nil
	}
	return sr
}

// pathID parses a numeric :id (or other named) path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// engineConfig builds the allocation engine's view of a show's
// configuration from its DB record.
func engineConfig(s *model.Show) lineup.ShowConfig {
	cfg := lineup.ShowConfig{
		Strategy:         lineup.Strategy(s.SignupStrategy),
		SetLengthOptions: append([]int(nil), s.SetLengthOptions...),
	}
	if s.MaxSignups != nil {
		cfg.MaxSignups = *s.MaxSignups
	}
	return cfg
}

// engineSnapshot converts persisted signups into the engine's signup
// type. Row order (arrival order) is preserved.
func engineSnapshot(rows []model.Signup) []*lineup.Signup {
	out := make([]*lineup.Signup, 0, len(rows))
	for i := range rows {
		out = append(out, engineSignup(&rows[i]))
	}
	return out
}

func engineSignup(m *model.Signup) *lineup.Signup {
	s := &lineup.Signup{
		ID:          m.ID,
		ShowID:      m.ShowID,
		ProfileID:   m.ProfileID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Type:        lineup.SignupType(m.SignupType),
		SetLength:   m.PreferredSetLength,
		Status:      lineup.Status(m.Status),
		CreatedAt:   m.CreatedAt,
	}
	if m.Notes != nil {
		s.Notes = *m.Notes
	}
	if m.LineupPosition != nil {
		p := *m.LineupPosition
		s.Position = &p
	}
	return s
}

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second
