// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Action item priority values.
const (
	ActionItemPriorityLow    = "low"
	ActionItemPriorityMedium = "medium"
	ActionItemPriorityHigh   = "high"
)

// Action item status values.
const (
	ActionItemStatusPending    = "pending"
	ActionItemStatusInProgress = "in_progress"
	ActionItemStatusCompleted  = "completed"
	ActionItemStatusBlocked    = "blocked"
)

// ActionItem is a single follow-up task extracted from a meeting.
type ActionItem struct {
	ID         string     `json:"id,omitempty"`
	Task       string     `json:"task"`
	AssignedTo string     `json:"assigned_to"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	Status     string     `json:"status,omitempty"`
	// Source records where the assignment landed ("planner" or "email").
	Source     string `json:"source,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// MeetingMinutes is the structured minutes generated from a transcript.
// The generator guarantees a well-formed value even when the model output
// cannot be parsed; see [FallbackMinutes].
type MeetingMinutes struct {
	MeetingID      string       `json:"meeting_id"`
	MeetingTitle   string       `json:"meeting_title"`
	Date           time.Time    `json:"date"`
	Agenda         []string     `json:"agenda"`
	KeyDecisions   []string     `json:"key_decisions"`
	ActionItems    []ActionItem `json:"action_items"`
	FollowUpPoints []string     `json:"follow_up_points"`
	Summary        string       `json:"summary,omitempty"`
	// Fallback marks minutes built from the deterministic structure instead
	// of parsed model output.
	Fallback  bool       `json:"fallback,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// FallbackMinutes builds the deterministic minutes structure used when
// generation fails or returns unparsable output. Action items are left empty
// rather than guessed.
func FallbackMinutes(meetingID, meetingTitle string, date time.Time) *MeetingMinutes {
	return &MeetingMinutes{
		MeetingID:      meetingID,
		MeetingTitle:   meetingTitle,
		Date:           date,
		Agenda:         []string{"Meeting topics discussed"},
		KeyDecisions:   []string{"Decisions to be extracted manually"},
		ActionItems:    []ActionItem{},
		FollowUpPoints: []string{"Follow-up items to be reviewed"},
		Fallback:       true,
	}
}
