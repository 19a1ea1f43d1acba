package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stagelist/stagelist/internal/model"
)

// SignupRepo provides CRUD operations for show signups. Signups are
// keyed by normalized email within a show: at most one non-cancelled
// row per (show_id, email). Position and status writes that follow an
// allocation run happen through the Tx variants so the whole lineup
// commits or none of it does.
type SignupRepo struct {
	db *sql.DB
}

// NewSignupRepo returns a new SignupRepo bound to the given database.
func NewSignupRepo(db *sql.DB) *SignupRepo { return &SignupRepo{db: db} }

const signupCols = `id, show_id, profile_id, display_name, email, signup_type,
                    preferred_set_length, notes, status, lineup_position, created_at, updated_at`

func scanSignup(scan func(dest ...any) error) (*model.Signup, error) {
	var s model.Signup
	var profileID sql.NullInt64
	var notes sql.NullString
	var pos sql.NullInt64
	err := scan(
		&s.ID, &s.ShowID, &profileID, &s.DisplayName, &s.Email, &s.SignupType,
		&s.PreferredSetLength, &notes, &s.Status, &pos, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if profileID.Valid {
		v := uint64(profileID.Int64)
		s.ProfileID = &v
	}
	if notes.Valid {
		v := notes.String
		s.Notes = &v
	}
	if pos.Valid {
		v := int(pos.Int64)
		s.LineupPosition = &v
	}
	return &s, nil
}

// CreateTx inserts a new signup within the scope of an existing
// transaction. The duplicate-email check runs in the same transaction,
// after the caller has locked the show row, so check and insert are
// atomic. The email must already be normalized. It returns
// ErrDuplicateSignup when a non-cancelled signup with the same email
// exists for the show.
func (r *SignupRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Signup) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM show_signups WHERE show_id = ? AND email = ? AND status <> 'cancelled' LIMIT 1`,
		s.ShowID, s.Email).Scan(&one)
	if err == nil {
		return ErrDuplicateSignup
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	const q = `INSERT INTO show_signups (show_id, profile_id, display_name, email, signup_type,
                                         preferred_set_length, notes, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		s.ShowID, s.ProfileID, s.DisplayName, s.Email, s.SignupType,
		s.PreferredSetLength, s.Notes, s.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	sel := `SELECT ` + signupCols + ` FROM show_signups WHERE id = ?`
	got, err := scanSignup(tx.QueryRowContext(ctx, sel, s.ID).Scan)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID fetches a signup by primary key. It returns ErrSignupNotFound
// when no row matches.
func (r *SignupRepo) GetByID(ctx context.Context, id uint64) (*model.Signup, error) {
	q := `SELECT ` + signupCols + ` FROM show_signups WHERE id = ?`
	s, err := scanSignup(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSignupNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByIDTx is GetByID inside the caller's transaction. Status
// transitions re-read the row after locking the show so their side
// effects are computed from the committed state, not from a snapshot
// taken before the lock.
func (r *SignupRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Signup, error) {
	q := `SELECT ` + signupCols + ` FROM show_signups WHERE id = ?`
	s, err := scanSignup(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSignupNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByShow returns all signups for a show in arrival order
// (created_at ascending, id as tiebreaker). The allocation engine and
// the lineup views both rely on this ordering.
func (r *SignupRepo) ListByShow(ctx context.Context, showID uint64) ([]model.Signup, error) {
	q := `SELECT ` + signupCols + ` FROM show_signups WHERE show_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSignups(rows)
}

// ListByShowTx is ListByShow inside the caller's transaction. Allocation
// snapshots the signups after locking the show row.
func (r *SignupRepo) ListByShowTx(ctx context.Context, tx *sql.Tx, showID uint64) ([]model.Signup, error) {
	q := `SELECT ` + signupCols + ` FROM show_signups WHERE show_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := tx.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSignups(rows)
}

func collectSignups(rows *sql.Rows) ([]model.Signup, error) {
	result := make([]model.Signup, 0)
	for rows.Next() {
		s, err := scanSignup(rows.Scan)
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

// UpdateStatusTx writes a signup's status and position in one statement
// within the caller's transaction. Pass a nil position to clear it.
func (r *SignupRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, position *int) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE show_signups SET status = ?, lineup_position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, position, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; verify before reporting not found.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM show_signups WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSignupNotFound
			}
			return err
		}
	}
	return nil
}

// ClearActivePositionsTx nulls the lineup_position of every active
// signup for the show. An allocation commit runs this first, then
// writes the fresh assignments, so any signup the run no longer covers
// ends up unpositioned.
func (r *SignupRepo) ClearActivePositionsTx(ctx context.Context, tx *sql.Tx, showID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE show_signups SET lineup_position = NULL, updated_at = CURRENT_TIMESTAMP
         WHERE show_id = ? AND status IN ('pending','confirmed','waitlist')`,
		showID)
	return err
}

// ApplyAssignmentsTx bulk-writes allocation results: one CASE-based
// UPDATE per column covering every assigned signup. Passing an empty
// slice has no effect and returns nil.
func (r *SignupRepo) ApplyAssignmentsTx(ctx context.Context, tx *sql.Tx, showID uint64, ids []uint64, positions []int, statuses []string) error {
	if len(ids) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`UPDATE show_signups SET lineup_position = CASE id`)
	args := make([]any, 0, len(ids)*4+len(ids)+1)
	for i, id := range ids {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, id, positions[i])
	}
	b.WriteString(` END, status = CASE id`)
	for i, id := range ids {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, id, statuses[i])
	}
	b.WriteString(` END, updated_at = CURRENT_TIMESTAMP WHERE show_id = ? AND id IN (`)
	args = append(args, showID)
	for i, id := range ids {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
		args = append(args, id)
	}
	b.WriteString(")")
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// DeleteByIDForOwner removes a signup when it is still pending and its
// show belongs to the given showrunner. It returns ErrSignupNotFound
// when the row does not exist, ErrForbidden when the show is owned by
// another showrunner and ErrConflict when the signup has left pending
// status (cancel it instead).
func (r *SignupRepo) DeleteByIDForOwner(ctx context.Context, id, showrunnerID uint64) error {
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
	const q = `SELECT sg.status, sh.showrunner_id
               FROM show_signups sg
               JOIN shows sh ON sh.id = sg.show_id
               WHERE sg.id = ?`
	var status string
	var ownerID uint64
	err = tx.QueryRowContext(ctx, q, id).Scan(&status, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSignupNotFound
		}
		return err
	}
	if ownerID != showrunnerID {
		return ErrForbidden
	}
	if status != "pending" {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM show_signups WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

// MySignupDetail joins a signup with its show for the performer-facing
// "my signups" listing.
type MySignupDetail struct {
	ID                 uint64  `json:"id"`
	ShowID             uint64  `json:"show_id"`
	ShowTitle          string  `json:"show_title"`
	ShowDate           string  `json:"show_date"`
	Venue              *string `json:"venue,omitempty"`
	VenueName          string  `json:"venue_name"`
	SignupType         string  `json:"signup_type"`
	PreferredSetLength int     `json:"preferred_set_length"`
	Status             string  `json:"status"`
	LineupPosition     *int    `json:"lineup_position,omitempty"`
}

// ListByEmail returns every signup recorded under the given normalized
// email along with show and showrunner context, newest show first.
func (r *SignupRepo) ListByEmail(ctx context.Context, email string) ([]MySignupDetail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT sg.id, sg.show_id, sh.title, sh.show_date, sh.venue, sr.venue_name,
                      sg.signup_type, sg.preferred_set_length, sg.status, sg.lineup_position
               FROM show_signups sg
               JOIN shows sh ON sh.id = sg.show_id
               JOIN showrunners sr ON sr.id = sh.showrunner_id
               WHERE sg.email = ?
               ORDER BY sh.show_date DESC, sg.id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]MySignupDetail, 0)
	for rows.Next() {
		var d MySignupDetail
		var venue sql.NullString
		var pos sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.ShowID, &d.ShowTitle, &d.ShowDate, &venue, &d.VenueName,
			&d.SignupType, &d.PreferredSetLength, &d.Status, &pos,
		); err != nil {
			return nil, err
		}
		if venue.Valid {
			v := venue.String
			d.Venue = &v
		}
		if pos.Valid {
			p := int(pos.Int64)
			d.LineupPosition = &p
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
