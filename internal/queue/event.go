// Package queue defines message payloads exchanged over the message broker.
package queue

// SignupConfirmedEvent is published when a status transition lands a
// signup in confirmed status. It contains enough information for
// downstream consumers to log or notify without querying the primary
// database.
type SignupConfirmedEvent struct {
	SignupID    uint64 `json:"signup_id"`
	ShowID      uint64 `json:"show_id"`
	ShowTitle   string `json:"show_title"`
	ShowDate    string `json:"show_date"`
	DisplayName string `json:"display_name"`
	SignupType  string `json:"signup_type"`
	Position    *int   `json:"lineup_position,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}

// LineupAllocatedEvent is published after an allocation run commits.
// Counts reflect the post-run lineup; Epoch identifies the run.
type LineupAllocatedEvent struct {
	ShowID      uint64 `json:"show_id"`
	ShowTitle   string `json:"show_title"`
	Strategy    string `json:"strategy"`
	Epoch       uint64 `json:"lineup_epoch"`
	Confirmed   int    `json:"confirmed"`
	Waitlisted  int    `json:"waitlisted"`
	AllocatedAt string `json:"allocated_at"`
}
