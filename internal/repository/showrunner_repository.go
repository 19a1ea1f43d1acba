package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stagelist/stagelist/internal/model"
)

// ShowrunnerRepo manages profiles and showrunner records. A profile
// links a user account to the performer-facing display name and email;
// a showrunner row on top of a profile grants the ability to run shows.
type ShowrunnerRepo struct{ db *sql.DB }

// NewShowrunnerRepo constructs a ShowrunnerRepo with the given DB handle.
func NewShowrunnerRepo(db *sql.DB) *ShowrunnerRepo { return &ShowrunnerRepo{db: db} }

// EnsureProfile returns the user's profile, creating one from the given
// email and display name when none exists yet. The email is normalized
// before insertion so signup matching stays case-insensitive.
func (r *ShowrunnerRepo) EnsureProfile(ctx context.Context, userID uint64, email, displayName string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := r.GetProfileByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO profiles (user_id, email, display_name) VALUES (?,?,?)",
		userID, email, displayName)
	if err != nil {
		// Concurrent creation for the same user lands here; re-read.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.GetProfileByUserID(ctx, userID)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Profile{ID: uint64(id), UserID: userID, Email: email, DisplayName: displayName}, nil
}

// GetProfileByUserID fetches the profile owned by the given user. It
// returns ErrProfileNotFound when the user has no profile row.
func (r *ShowrunnerRepo) GetProfileByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	const q = `SELECT id, user_id, email, display_name, created_at FROM profiles WHERE user_id = ? LIMIT 1`
	var p model.Profile
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.Email, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetProfileByEmail fetches a profile by normalized email. Used when a
// signup arrives so it can be linked to an existing account.
func (r *ShowrunnerRepo) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT id, user_id, email, display_name, created_at FROM profiles WHERE email = ? LIMIT 1`
	var p model.Profile
	err := r.db.QueryRowContext(ctx, q, email).Scan(&p.ID, &p.UserID, &p.Email, &p.DisplayName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateShowrunner promotes a profile to showrunner. It returns
// ErrConflict when the profile already has a showrunner record.
func (r *ShowrunnerRepo) CreateShowrunner(ctx context.Context, sr *model.Showrunner) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO showrunners (profile_id, venue_name, bio) VALUES (?,?,?)",
		sr.ProfileID, sr.VenueName, sr.Bio)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sr.ID = uint64(id)
	return nil
}

// GetByUserID resolves the showrunner record for a user account by
// walking user -> profile -> showrunner. Organizer handlers call this
// once per request to establish ownership of shows.
func (r *ShowrunnerRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Showrunner, error) {
	const q = `SELECT sr.id, sr.profile_id, sr.venue_name, sr.bio, sr.created_at
               FROM showrunners sr
               JOIN profiles p ON p.id = sr.profile_id
               WHERE p.user_id = ?
               LIMIT 1`
	var sr model.Showrunner
	var bio sql.NullString
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&sr.ID, &sr.ProfileID, &sr.VenueName, &bio, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowrunnerNotFound
		}
		return nil, err
	}
	if bio.Valid {
		b := bio.String
		sr.Bio = &b
	}
	return &sr, nil
}

// GetByID fetches a showrunner by primary key. It returns
// ErrShowrunnerNotFound when no row matches.
func (r *ShowrunnerRepo) GetByID(ctx context.Context, id uint64) (*model.Showrunner, error) {
	const q = `SELECT id, profile_id, venue_name, bio, created_at FROM showrunners WHERE id = ? LIMIT 1`
	var sr model.Showrunner
	var bio sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(&sr.ID, &sr.ProfileID, &sr.VenueName, &bio, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowrunnerNotFound
		}
		return nil, err
	}
	if bio.Valid {
		b := bio.String
		sr.Bio = &b
	}
	return &sr, nil
}
