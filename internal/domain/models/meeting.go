// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package models contains the domain models for the minutes service.
package models

import (
	"strings"
	"time"
)

// TranscriptionStatus is the lifecycle state of a meeting record's transcript.
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"
	TranscriptionStatusProcessing TranscriptionStatus = "processing"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

// TranscriptionMethod records how a transcript was obtained.
type TranscriptionMethod string

const (
	// TranscriptionMethodTeams means the caption track was fetched from the provider.
	TranscriptionMethodTeams TranscriptionMethod = "teams"
	// TranscriptionMethodWhisper means a downloaded recording was transcribed locally.
	TranscriptionMethodWhisper TranscriptionMethod = "whisper"
	// TranscriptionMethodWhisperTeams means audio transcription of a provider recording
	// was preferred over an available caption track.
	TranscriptionMethodWhisperTeams TranscriptionMethod = "whisper_teams"
	// TranscriptionMethodWhisperLocal means a locally uploaded audio file was transcribed.
	TranscriptionMethodWhisperLocal TranscriptionMethod = "whisper_local"
)

// TranscriptNotAvailable is the legacy sentinel stored in place of a missing
// transcript. Records carrying it are treated the same as records with an
// empty transcript.
const TranscriptNotAvailable = "Transcript not available"

// MinTranscriptLength is the minimum length for a transcript to be considered
// meaningful. Anything shorter leaves the record pending for the next cycle.
const MinTranscriptLength = 50

// Participant is a meeting participant as stored on a meeting record.
type Participant struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// MeetingRecord is the key-value store representation of a synced meeting.
// It is created once per external meeting id and mutated by the transcript
// scheduler and the minutes generation step.
type MeetingRecord struct {
	MeetingID           string              `json:"meeting_id"`
	Title               string              `json:"title"`
	StartTime           time.Time           `json:"start_time"`
	DurationMinutes     int                 `json:"duration_minutes"`
	Participants        []Participant       `json:"participants,omitempty"`
	JoinURL             string              `json:"join_url,omitempty"`
	OnlineMeetingID     string              `json:"online_meeting_id,omitempty"`
	BodyHTML            string              `json:"body_html,omitempty"`
	TranscriptText      string              `json:"transcript_text,omitempty"`
	TranscriptionStatus TranscriptionStatus `json:"transcription_status"`
	TranscriptionMethod TranscriptionMethod `json:"transcription_method,omitempty"`
	MinutesGenerated    bool                `json:"minutes_generated"`
	CreatedAt           *time.Time          `json:"created_at,omitempty"`
	UpdatedAt           *time.Time          `json:"updated_at,omitempty"`
}

// EndTime returns the scheduled end of the meeting. A zero duration is
// treated as one hour, matching the sync default.
func (m *MeetingRecord) EndTime() time.Time {
	duration := m.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	return m.StartTime.Add(time.Duration(duration) * time.Minute)
}

// HasUsableTranscript reports whether the record carries meaningful transcript
// text rather than nothing or the legacy sentinel.
func (m *MeetingRecord) HasUsableTranscript() bool {
	text := strings.TrimSpace(m.TranscriptText)
	return text != "" && text != TranscriptNotAvailable && len(text) > MinTranscriptLength
}

// ParticipantEmails returns the lowercased participant email addresses.
func (m *MeetingRecord) ParticipantEmails() []string {
	emails := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		if p.Email == "" {
			continue
		}
		emails = append(emails, strings.ToLower(p.Email))
	}
	return emails
}

// ToEvent builds the immutable resolution snapshot for this record.
func (m *MeetingRecord) ToEvent() MeetingEvent {
	return MeetingEvent{
		ID:              m.MeetingID,
		Title:           m.Title,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime(),
		Participants:    m.ParticipantEmails(),
		JoinURL:         m.JoinURL,
		OnlineMeetingID: m.OnlineMeetingID,
		BodyHTML:        m.BodyHTML,
	}
}

// MeetingEvent is the immutable input snapshot for one transcript resolution
// attempt: the calendar event's time range, participant emails, and whatever
// online-meeting hints the event carried.
type MeetingEvent struct {
	ID              string
	Title           string
	StartTime       time.Time
	EndTime         time.Time
	Participants    []string
	JoinURL         string
	OnlineMeetingID string
	BodyHTML        string
}

// ParticipantSet returns the participant emails as a lowercased set.
func (e MeetingEvent) ParticipantSet() map[string]struct{} {
	set := make(map[string]struct{}, len(e.Participants))
	for _, p := range e.Participants {
		if p == "" {
			continue
		}
		set[strings.ToLower(p)] = struct{}{}
	}
	return set
}

// Overlaps reports whether the [start, end] interval overlaps the event's
// scheduled interval.
func (e MeetingEvent) Overlaps(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !start.After(e.EndTime) && !end.Before(e.StartTime)
}
