package model

import "time"

// Show represents one open-mic night run by a showrunner.  It owns
// zero or more Signups and carries the configuration the allocation
// engine reads: strategy, capacity and the set lengths performers may
// pick from.
//
// Fields:
//  ID               – primary key identifier.
//  ShowrunnerID     – showrunner who owns the show.
//  Title            – public show title.
//  Description      – optional blurb shown to performers.
//  Venue            – optional venue name.
//  Address          – optional street address.
//  ShowDate         – calendar date of the event.
//  ShowTime         – optional start time ("HH:MM").
//  DoorsTime        – optional doors-open time ("HH:MM").
//  SignupStrategy   – curated, numbered or bucket.
//  MaxSignups       – confirmed capacity; nil means unlimited.
//  SetLengthOptions – allowed set lengths in minutes, ascending.
//  Status           – draft, open, closed or completed.
//  LineupEpoch      – incremented on every committed allocation run.
//  NeedsAllocation  – true when eligibility changed since the last run.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Show struct {
	ID               uint64    // shows.id
	ShowrunnerID     uint64    // shows.showrunner_id
	Title            string    // shows.title
	Description      *string   // shows.description (nullable)
	Venue            *string   // shows.venue (nullable)
	Address          *string   // shows.address (nullable)
	ShowDate         string    // shows.show_date ("YYYY-MM-DD")
	ShowTime         *string   // shows.show_time (nullable, "HH:MM")
	DoorsTime        *string   // shows.doors_time (nullable, "HH:MM")
	SignupStrategy   string    // shows.signup_strategy
	MaxSignups       *int      // shows.max_signups (nullable)
	SetLengthOptions []int     // shows.set_length_options (CSV column)
	Status           string    // shows.status
	LineupEpoch      uint64    // shows.lineup_epoch
	NeedsAllocation  bool      // shows.needs_allocation
	CreatedAt        time.Time // shows.created_at
	UpdatedAt        time.Time // shows.updated_at
}
