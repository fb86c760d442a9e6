// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/graph"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/utils"
)

// Resolution is the outcome of a successful transcript resolution.
type Resolution struct {
	Text            string
	Method          models.TranscriptionMethod
	OnlineMeetingID string
}

// ResolverService locates the online-meeting resource behind a calendar
// event and retrieves its transcript. The provider links events and meeting
// sessions only informally, so resolution falls through an ordered set of
// strategies until one yields a meeting id.
//
// A nil Resolution with a nil error means no transcript could be found; only
// credential failures propagate as errors.
type ResolverService struct {
	GraphClient graph.ClientAPI
	Transcriber domain.AudioTranscriber
	Config      ServiceConfig
}

// NewResolverService creates a new ResolverService.
func NewResolverService(graphClient graph.ClientAPI, transcriber domain.AudioTranscriber, config ServiceConfig) *ResolverService {
	return &ResolverService{
		GraphClient: graphClient,
		Transcriber: transcriber,
		Config:      config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ResolverService) ServiceReady() bool {
	return s.GraphClient != nil
}

// ResolveTranscript resolves the transcript for one meeting event using the
// given credential holder's token.
func (s *ResolverService) ResolveTranscript(ctx context.Context, token string, event models.MeetingEvent) (*Resolution, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	meetingID, err := s.resolveOnlineMeetingID(ctx, token, event)
	if err != nil {
		return nil, err
	}
	if meetingID == "" {
		slog.InfoContext(ctx, "no online meeting resolved for event", "event_id", event.ID)
		return nil, nil
	}

	resolution, err := s.fetchContent(ctx, token, meetingID)
	if err != nil {
		return nil, err
	}
	if resolution == nil {
		slog.InfoContext(ctx, "online meeting has no retrievable transcript or recording",
			"event_id", event.ID,
			"online_meeting_id", meetingID,
		)
		return nil, nil
	}

	resolution.OnlineMeetingID = meetingID
	return resolution, nil
}

// resolveOnlineMeetingID runs the strategy chain. Empty result with nil error
// means every strategy came up empty.
func (s *ResolverService) resolveOnlineMeetingID(ctx context.Context, token string, event models.MeetingEvent) (string, error) {
	// A previous resolution may have pinned the meeting id on the record.
	if event.OnlineMeetingID != "" {
		return event.OnlineMeetingID, nil
	}

	// Strategy 1: provider-side join-URL filter. Highest confidence.
	if event.JoinURL != "" {
		id, err := s.lookupByJoinURL(ctx, token, event.JoinURL, "join_url_lookup")
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}

	// Strategy 2: expand the calendar event's embedded online-meeting
	// sub-resource.
	if event.ID != "" {
		id, err := s.expandEvent(ctx, token, event)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}

	// Strategy 3: list everything, filter by time overlap, score by
	// participant intersection.
	id, err := s.scoredTimeOverlap(ctx, token, event)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	// Strategy 4: re-score on the alternate attendee shape. Structurally
	// distinct because the provider populates different fields per endpoint
	// version; either may be absent depending on deployment.
	id, err = s.scoredAlternateShape(ctx, token, event)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	// Strategy 5: extract a join URL from the event body and retry the
	// provider-side filter.
	if event.BodyHTML != "" {
		if joinURL := utils.ExtractJoinURL(event.BodyHTML); joinURL != "" && joinURL != event.JoinURL {
			slog.DebugContext(ctx, "extracted join URL from event body", "event_id", event.ID)
			id, err := s.lookupByJoinURL(ctx, token, joinURL, "body_url_extraction")
			if err != nil {
				return "", err
			}
			if id != "" {
				return id, nil
			}
		}
	}

	return "", nil
}

func (s *ResolverService) lookupByJoinURL(ctx context.Context, token, joinURL, strategy string) (string, error) {
	meeting, err := s.GraphClient.GetOnlineMeetingByJoinURL(ctx, token, joinURL)
	if err != nil {
		return "", s.strategyError(ctx, strategy, err)
	}
	slog.DebugContext(ctx, "resolved online meeting", "strategy", strategy, "online_meeting_id", meeting.ID)
	return meeting.ID, nil
}

func (s *ResolverService) expandEvent(ctx context.Context, token string, event models.MeetingEvent) (string, error) {
	info, err := s.GraphClient.GetEventOnlineMeeting(ctx, token, event.ID)
	if err != nil {
		return "", s.strategyError(ctx, "event_expansion", err)
	}
	if info.ID != "" {
		slog.DebugContext(ctx, "resolved online meeting", "strategy", "event_expansion", "online_meeting_id", info.ID)
		return info.ID, nil
	}
	// The sub-resource sometimes carries only the join URL.
	if info.JoinURL != "" && info.JoinURL != event.JoinURL {
		return s.lookupByJoinURL(ctx, token, info.JoinURL, "event_expansion")
	}
	return "", nil
}

// scoredTimeOverlap implements the time+participant scored fallback: keep
// meetings whose interval overlaps the event's, score by attendee-UPN
// intersection with the event's participant set, pick the strict maximum
// (first encountered wins ties). When no candidate shares a participant but
// overlapping candidates exist, the longest-duration candidate is picked if
// the AllowTimeOnlyMatch policy is enabled.
func (s *ResolverService) scoredTimeOverlap(ctx context.Context, token string, event models.MeetingEvent) (string, error) {
	meetings, err := s.GraphClient.ListOnlineMeetings(ctx, token)
	if err != nil {
		return "", s.strategyError(ctx, "time_participant_scoring", err)
	}

	var candidates []graph.OnlineMeeting
	for _, m := range meetings {
		start, end, ok := m.Interval()
		if !ok {
			continue
		}
		if event.Overlaps(start, end) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		slog.DebugContext(ctx, "no time-overlapping online meetings", "event_id", event.ID)
		return "", nil
	}

	participants := event.ParticipantSet()
	best := -1
	bestID := ""
	for _, c := range candidates {
		score := overlapScore(participants, c.AttendeeUPNs())
		if score > best {
			best = score
			bestID = c.ID
		}
	}

	if best > 0 {
		slog.DebugContext(ctx, "resolved online meeting",
			"strategy", "time_participant_scoring",
			"online_meeting_id", bestID,
			"score", best,
		)
		return bestID, nil
	}

	if !s.Config.AllowTimeOnlyMatch {
		slog.DebugContext(ctx, "overlapping candidates share no participants, time-only match disabled",
			"event_id", event.ID,
			"candidates", len(candidates),
		)
		return "", nil
	}

	// Last resort: favor "some transcript" over none by taking the longest
	// overlapping meeting.
	var longest graph.OnlineMeeting
	var longestDuration time.Duration = -1
	for _, c := range candidates {
		if d := c.Duration(); d > longestDuration {
			longestDuration = d
			longest = c
		}
	}
	slog.InfoContext(ctx, "no participant overlap, selecting longest overlapping meeting",
		"event_id", event.ID,
		"online_meeting_id", longest.ID,
		"duration", longestDuration.String(),
	)
	return longest.ID, nil
}

// scoredAlternateShape re-fetches the collection and scores attendee-email
// intersection on the emailAddress sub-object instead of the upn field.
func (s *ResolverService) scoredAlternateShape(ctx context.Context, token string, event models.MeetingEvent) (string, error) {
	meetings, err := s.GraphClient.ListOnlineMeetings(ctx, token)
	if err != nil {
		return "", s.strategyError(ctx, "direct_search", err)
	}

	participants := event.ParticipantSet()
	best := 0
	bestID := ""
	for _, m := range meetings {
		score := overlapScore(participants, m.AttendeeEmails())
		if score > best {
			best = score
			bestID = m.ID
		}
	}
	if bestID == "" {
		slog.DebugContext(ctx, "direct search found no attendee matches", "event_id", event.ID)
		return "", nil
	}

	slog.DebugContext(ctx, "resolved online meeting",
		"strategy", "direct_search",
		"online_meeting_id", bestID,
		"score", best,
	)
	return bestID, nil
}

// overlapScore counts case-insensitive membership of attendee identities in
// the event's participant set. Attendee lists are already lowercased.
func overlapScore(participants map[string]struct{}, attendees []string) int {
	score := 0
	for _, a := range attendees {
		if _, ok := participants[a]; ok {
			score++
		}
	}
	return score
}

// fetchContent retrieves transcript text for a resolved online meeting:
// caption track first (or audio first under that policy), then recording
// download plus audio transcription.
func (s *ResolverService) fetchContent(ctx context.Context, token, meetingID string) (*Resolution, error) {
	if s.Config.AudioFirst {
		resolution, err := s.transcribeRecording(ctx, token, meetingID, models.TranscriptionMethodWhisperTeams)
		if err != nil || resolution != nil {
			return resolution, err
		}
		return s.fetchCaptionTrack(ctx, token, meetingID)
	}

	resolution, err := s.fetchCaptionTrack(ctx, token, meetingID)
	if err != nil || resolution != nil {
		return resolution, err
	}
	return s.transcribeRecording(ctx, token, meetingID, models.TranscriptionMethodWhisper)
}

// fetchCaptionTrack lists transcript artifacts, selects the most recent by
// the deterministic timestamp chain, and fetches + normalizes its content.
func (s *ResolverService) fetchCaptionTrack(ctx context.Context, token, meetingID string) (*Resolution, error) {
	transcripts, err := s.GraphClient.ListTranscripts(ctx, token, meetingID)
	if err != nil {
		return nil, s.strategyError(ctx, "list_transcripts", err)
	}
	if len(transcripts) == 0 {
		return nil, nil
	}

	selected := selectLatestTranscript(transcripts)
	content, err := s.GraphClient.GetTranscriptContent(ctx, token, meetingID, selected.ID, s.Config.TranscriptFormat)
	if err != nil {
		return nil, s.strategyError(ctx, "transcript_content", err)
	}

	text := utils.TranscriptToPlainText(content)
	if text == "" {
		return nil, nil
	}
	return &Resolution{Text: text, Method: models.TranscriptionMethodTeams}, nil
}

// selectLatestTranscript picks the most recently created artifact. The sort
// key falls back created -> lastModified -> end -> start -> zero time, and
// ties keep the first-encountered artifact.
func selectLatestTranscript(transcripts []graph.Transcript) graph.Transcript {
	selected := transcripts[0]
	selectedKey := selected.SortKey()
	for _, t := range transcripts[1:] {
		if key := t.SortKey(); key.After(selectedKey) {
			selected = t
			selectedKey = key
		}
	}
	return selected
}

// transcribeRecording downloads the most recent recording and runs it
// through the audio transcription engine.
func (s *ResolverService) transcribeRecording(ctx context.Context, token, meetingID string, method models.TranscriptionMethod) (*Resolution, error) {
	if s.Transcriber == nil {
		return nil, nil
	}

	recordings, err := s.GraphClient.ListRecordings(ctx, token, meetingID)
	if err != nil {
		return nil, s.strategyError(ctx, "list_recordings", err)
	}
	if len(recordings) == 0 {
		return nil, nil
	}

	// Recency by position: the last entry in the listing.
	recording := recordings[len(recordings)-1]
	audio, err := s.GraphClient.DownloadRecording(ctx, token, meetingID, recording.ID)
	if err != nil {
		return nil, s.strategyError(ctx, "download_recording", err)
	}

	result, err := s.Transcriber.TranscribeBytes(ctx, audio, fmt.Sprintf("%s.mp4", recording.ID), "")
	if err != nil {
		return nil, s.strategyError(ctx, "audio_transcription", err)
	}
	if result == nil || result.Text == "" {
		return nil, nil
	}

	slog.InfoContext(ctx, "recording transcribed",
		"online_meeting_id", meetingID,
		"recording_id", recording.ID,
		"language", result.Language,
	)
	return &Resolution{Text: result.Text, Method: method}, nil
}

// strategyError implements the propagation policy: credential failures cross
// the resolver boundary, everything else is logged and swallowed so the next
// strategy or candidate gets its chance.
func (s *ResolverService) strategyError(ctx context.Context, strategy string, err error) error {
	if domain.IsUnauthenticated(err) {
		slog.WarnContext(ctx, "credential failure during resolution", "strategy", strategy, logging.ErrKey, err)
		return err
	}
	if domain.IsNotFound(err) {
		slog.DebugContext(ctx, "strategy yielded nothing", "strategy", strategy, logging.ErrKey, err)
	} else {
		slog.WarnContext(ctx, "strategy failed", "strategy", strategy, logging.ErrKey, err)
	}
	return nil
}
