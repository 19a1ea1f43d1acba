package model

import "time"

// Profile links an authenticated user to the performer-facing data the
// app shows: a display name and the email signups are matched against.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owning user account.
//  Email       – normalized email, unique.
//  DisplayName – public performer name.
//  CreatedAt   – creation timestamp.
type Profile struct {
	ID          uint64    // profiles.id
	UserID      uint64    // profiles.user_id
	Email       string    // profiles.email
	DisplayName string    // profiles.display_name
	CreatedAt   time.Time // profiles.created_at
}

// Showrunner marks a profile as an organizer able to create and manage
// shows.  VenueName is displayed on every show the showrunner runs.
//
// Fields:
//  ID        – primary key identifier.
//  ProfileID – owning profile.
//  VenueName – venue or show-series name shown publicly.
//  Bio       – optional blurb for performers.
//  CreatedAt – creation timestamp.
type Showrunner struct {
	ID        uint64    // showrunners.id
	ProfileID uint64    // showrunners.profile_id
	VenueName string    // showrunners.venue_name
	Bio       *string   // showrunners.bio (nullable)
	CreatedAt time.Time // showrunners.created_at
}
