// Package repository contains data access logic for show operations. A
// show is one open-mic night owned by a showrunner; its row carries the
// allocation configuration (strategy, capacity, set lengths) alongside
// the lineup bookkeeping columns lineup_epoch and needs_allocation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/stagelist/stagelist/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB. It allows callers to begin
// transactions spanning multiple repositories, such as the allocation
// commit that locks the show row and rewrites signup positions.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

const showCols = `id, showrunner_id, title, description, venue, address, show_date,
                  show_time, doors_time, signup_strategy, max_signups, set_length_options,
                  status, lineup_epoch, needs_allocation, created_at, updated_at`

// scanShow reads one show row from any scanner (sql.Row or sql.Rows).
func scanShow(scan func(dest ...any) error) (*model.Show, error) {
	var s model.Show
	var desc, venue, addr, showTime, doorsTime sql.NullString
	var maxSignups sql.NullInt64
	var setLengths string
	err := scan(
		&s.ID, &s.ShowrunnerID, &s.Title, &desc, &venue, &addr, &s.ShowDate,
		&showTime, &doorsTime, &s.SignupStrategy, &maxSignups, &setLengths,
		&s.Status, &s.LineupEpoch, &s.NeedsAllocation, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		s.Description = &v
	}
	if venue.Valid {
		v := venue.String
		s.Venue = &v
	}
	if addr.Valid {
		v := addr.String
		s.Address = &v
	}
	if showTime.Valid {
		v := showTime.String
		s.ShowTime = &v
	}
	if doorsTime.Valid {
		v := doorsTime.String
		s.DoorsTime = &v
	}
	if maxSignups.Valid {
		n := int(maxSignups.Int64)
		s.MaxSignups = &n
	}
	s.SetLengthOptions = decodeSetLengths(setLengths)
	return &s, nil
}

// encodeSetLengths renders the set-length options as the CSV stored in
// the set_length_options column ("3,5,7").
func encodeSetLengths(opts []int) string {
	parts := make([]string, 0, len(opts))
	for _, n := range opts {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}

// decodeSetLengths parses the CSV column back into ints, skipping any
// malformed entries.
func decodeSetLengths(s string) []int {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []int
	for _, p := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Create inserts a new show and populates the generated ID and
// DB-default fields (status, epoch, timestamps) on the given record.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (showrunner_id, title, description, venue, address, show_date,
                                  show_time, doors_time, signup_strategy, max_signups, set_length_options)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.ShowrunnerID, s.Title, s.Description, s.Venue, s.Address, s.ShowDate,
		s.ShowTime, s.DoorsTime, s.SignupStrategy, s.MaxSignups, encodeSetLengths(s.SetLengthOptions),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query the inserted row to obtain defaults (status, epoch, timestamps).
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a show by its ID. It returns ErrShowNotFound if
// there is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	q := `SELECT ` + showCols + ` FROM shows WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	s, err := scanShow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetForUpdateTx loads a show row under SELECT ... FOR UPDATE inside the
// caller's transaction. Allocation and signup writes lock the show row
// first so concurrent runs against the same show serialize.
func (r *ShowRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Show, error) {
	q := `SELECT ` + showCols + ` FROM shows WHERE id = ? FOR UPDATE`
	row := tx.QueryRowContext(ctx, q, id)
	s, err := scanShow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListOpen returns all shows currently open for signups, ordered by
// show date ascending. Used by the public browse endpoint; an empty
// slice is returned when nothing is open.
func (r *ShowRepo) ListOpen(ctx context.Context) ([]model.Show, error) {
	q := `SELECT ` + showCols + ` FROM shows WHERE status = 'open' ORDER BY show_date ASC, id ASC`
	return r.list(ctx, q)
}

// ListByShowrunner returns all shows owned by the given showrunner,
// newest show date first.
func (r *ShowRepo) ListByShowrunner(ctx context.Context, showrunnerID uint64) ([]model.Show, error) {
	q := `SELECT ` + showCols + ` FROM shows WHERE showrunner_id = ? ORDER BY show_date DESC, id DESC`
	return r.list(ctx, q, showrunnerID)
}

func (r *ShowRepo) list(ctx context.Context, q string, args ...any) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Show, 0)
	for rows.Next() {
		s, err := scanShow(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountSignups returns the number of signups (any status) attached to a
// show. Strategy and set-length options become immutable once this is
// non-zero.
func (r *ShowRepo) CountSignups(ctx context.Context, showID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM show_signups WHERE show_id = ?`, showID).Scan(&n)
	return n, err
}

// UpdateByIDAndOwner updates a show's attributes if it belongs to the
// given showrunner. It only performs the UPDATE when at least one field
// differs; otherwise it returns ErrNoChange. When the row/ownership
// doesn't match, it returns sql.ErrNoRows.
func (r *ShowRepo) UpdateByIDAndOwner(ctx context.Context, s *model.Show, showrunnerID uint64) error {
	setCSV := encodeSetLengths(s.SetLengthOptions)
	const q = `UPDATE shows
               SET title = ?, description = ?, venue = ?, address = ?, show_date = ?,
                   show_time = ?, doors_time = ?, signup_strategy = ?, max_signups = ?,
                   set_length_options = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ? AND showrunner_id = ?
                 AND (title <> ? OR NOT (description <=> ?) OR NOT (venue <=> ?) OR NOT (address <=> ?)
                      OR show_date <> ? OR NOT (show_time <=> ?) OR NOT (doors_time <=> ?)
                      OR signup_strategy <> ? OR NOT (max_signups <=> ?)
                      OR set_length_options <> ? OR status <> ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.Title, s.Description, s.Venue, s.Address, s.ShowDate,
		s.ShowTime, s.DoorsTime, s.SignupStrategy, s.MaxSignups,
		setCSV, s.Status, // SET
		s.ID, showrunnerID, // WHERE (record + owner)
		s.Title, s.Description, s.Venue, s.Address,
		s.ShowDate, s.ShowTime, s.DoorsTime,
		s.SignupStrategy, s.MaxSignups,
		setCSV, s.Status, // only if at least one field differs
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Determine if it's "not found/ownership" or simply "no change".
	const qExists = `SELECT 1 FROM shows WHERE id = ? AND showrunner_id = ? LIMIT 1`
	var one int
	if err := r.db.QueryRowContext(ctx, qExists, s.ID, showrunnerID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return sql.ErrNoRows // record doesn't exist or belongs to another showrunner
		}
		return err
	}
	return ErrNoChange // row exists but values are identical
}

// MarkNeedsAllocationTx flags the show so the next allocation run knows
// eligibility changed since the last commit. Runs inside the caller's
// transaction alongside the status write that triggered it.
func (r *ShowRepo) MarkNeedsAllocationTx(ctx context.Context, tx *sql.Tx, showID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE shows SET needs_allocation = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, showID)
	return err
}

// CommitAllocationTx records a completed allocation run: it bumps the
// lineup epoch and clears the needs_allocation flag. Must run in the
// same transaction that wrote the new positions.
func (r *ShowRepo) CommitAllocationTx(ctx context.Context, tx *sql.Tx, showID, newEpoch uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE shows SET lineup_epoch = ?, needs_allocation = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newEpoch, showID)
	return err
}

// DeleteByIDAndOwner removes a show provided it belongs to the given
// showrunner, is still a draft and has no signups. If the show does not
// exist, ErrShowNotFound is returned. If it is owned by another
// showrunner, ErrForbidden is returned. If it has left draft status or
// already has signups, ErrConflict is returned.
func (r *ShowRepo) DeleteByIDAndOwner(ctx context.Context, id, showrunnerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var dbOwnerID uint64
	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT showrunner_id, status FROM shows WHERE id = ?`, id,
	).Scan(&dbOwnerID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return err
	}
	if dbOwnerID != showrunnerID {
		return ErrForbidden
	}
	if status != "draft" {
		return ErrConflict
	}
	var signupCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM show_signups WHERE show_id = ?`, id).Scan(&signupCount); err != nil {
		return err
	}
	if signupCount > 0 {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
