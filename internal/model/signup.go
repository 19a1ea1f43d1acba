package model

import "time"

// Signup records one performer's request for a slot in a show.  The
// email is stored lower-cased and acts as the duplicate key among the
// show's non-cancelled signups.  LineupPosition stays null until the
// allocation engine (or a curated reorder) assigns one.
//
// Fields:
//  ID                 – primary key identifier.
//  ShowID             – owning show.
//  ProfileID          – linked performer profile (matched by email,
//                       nullable for walk-ups without an account).
//  DisplayName        – name shown on the lineup.
//  Email              – normalized contact address.
//  SignupType         – online or in_person.
//  PreferredSetLength – chosen set length in minutes.
//  Notes              – optional free-form notes for the organizer.
//  Status             – pending, confirmed, waitlist, cancelled, no_show.
//  LineupPosition     – assigned position (nullable).
//  CreatedAt          – arrival time; ordering key for allocation.
//  UpdatedAt          – last update timestamp.
type Signup struct {
	ID                 uint64    // show_signups.id
	ShowID             uint64    // show_signups.show_id
	ProfileID          *uint64   // show_signups.profile_id (nullable)
	DisplayName        string    // show_signups.display_name
	Email              string    // show_signups.email
	SignupType         string    // show_signups.signup_type
	PreferredSetLength int       // show_signups.preferred_set_length
	Notes              *string   // show_signups.notes (nullable)
	Status             string    // show_signups.status
	LineupPosition     *int      // show_signups.lineup_position (nullable)
	CreatedAt          time.Time // show_signups.created_at
	UpdatedAt          time.Time // show_signups.updated_at
}
