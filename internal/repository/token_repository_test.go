package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRefreshSessionStates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	cols := []string{"user_id", "expires_at", "revoked_at"}
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("live").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(42, future, nil))
	uid, err := repo.ValidateRefresh(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)

	// Revoked, expired and unknown hashes are indistinguishable.
	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(42, future, time.Now()))
	_, err = repo.ValidateRefresh(context.Background(), "revoked")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("expired").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(42, past, nil))
	_, err = repo.ValidateRefresh(context.Background(), "expired")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.ValidateRefresh(context.Background(), "unknown")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAllForUserTouchesOnlyActiveRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = NOW\(\) WHERE user_id = \? AND revoked_at IS NULL`).
		WithArgs(uint64(42)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.RevokeAllForUser(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
