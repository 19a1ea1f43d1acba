package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelist/stagelist/internal/repository"
)

var (
	showColNames = []string{
		"id", "showrunner_id", "title", "description", "venue", "address", "show_date",
		"show_time", "doors_time", "signup_strategy", "max_signups", "set_length_options",
		"status", "lineup_epoch", "needs_allocation", "created_at", "updated_at",
	}
	signupColNames = []string{
		"id", "show_id", "profile_id", "display_name", "email", "signup_type",
		"preferred_set_length", "notes", "status", "lineup_position", "created_at", "updated_at",
	}
)

// ChangeStatus must act on the signup row as it stands once the show
// lock is held. Here an allocation commits between the handler's first
// read and the lock: the stale read sees a pending signup with no
// position, the locked re-read sees it confirmed at position 2.
// Confirming again must keep position 2 and report no reallocation,
// not null the position out.
func TestChangeStatusUsesRowReadUnderShowLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	h := NewOrganizerHandler(
		repository.NewShowRepo(db),
		repository.NewSignupRepo(db),
		repository.NewShowrunnerRepo(db),
	)

	mock.ExpectQuery("FROM showrunners sr").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "venue_name", "bio", "created_at"}).
			AddRow(7, 3, "The Basement", nil, now))

	mock.ExpectQuery("FROM show_signups WHERE id").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(signupColNames).
			AddRow(3, 10, nil, "Dana", "dana@example.com", "in_person", 5, nil, "pending", nil, now, now))

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM shows WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows(showColNames).
			AddRow(10, 7, "Mic Night", nil, nil, nil, "2026-09-10", nil, nil, "numbered", nil, "3,5", "open", 4, false, now, now))

	mock.ExpectQuery("FROM show_signups WHERE id").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(signupColNames).
			AddRow(3, 10, nil, "Dana", "dana@example.com", "in_person", 5, nil, "confirmed", 2, now, now))

	mock.ExpectExec("UPDATE show_signups SET status").
		WithArgs("confirmed", 2, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/signups/3/status", strings.NewReader(`{"status":"confirmed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set("user_id", float64(42))

	require.NoError(t, h.ChangeStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lineup_position":2`)
	assert.Contains(t, rec.Body.String(), `"needs_reallocation":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
