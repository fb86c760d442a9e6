// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// maxPromptTranscriptChars truncates oversized transcripts before prompting
// so the request stays inside the model's context window.
const maxPromptTranscriptChars = 24000

const minutesSystemPrompt = `You are an assistant that writes structured minutes of meetings.
Respond with a single JSON object and nothing else, using exactly these keys:
"agenda" (array of strings), "key_decisions" (array of strings),
"action_items" (array of objects with "task", "assigned_to", "due_date" in
YYYY-MM-DD format or null, "priority" one of "low", "medium", "high"),
"follow_up_points" (array of strings), "summary" (string).
Assign action items only to people named in the transcript or participant list.`

const summarySystemPrompt = `You are an assistant that summarizes meeting transcripts.
Respond with a short plain-text summary of at most three paragraphs.`

// MinutesService generates structured minutes from meeting transcripts via a
// chat-completion backend. Implements domain.MinutesGenerator.
type MinutesService struct {
	Completer domain.ChatCompleter
	now       func() time.Time
}

// NewMinutesService creates a new MinutesService.
func NewMinutesService(completer domain.ChatCompleter) *MinutesService {
	return &MinutesService{
		Completer: completer,
		now:       time.Now,
	}
}

var _ domain.MinutesGenerator = (*MinutesService)(nil)

// ServiceReady checks if the service is ready for use.
func (s *MinutesService) ServiceReady() bool {
	return s.Completer != nil
}

// generatedMinutes is the wire shape expected back from the model.
type generatedMinutes struct {
	Agenda         []string              `json:"agenda"`
	KeyDecisions   []string              `json:"key_decisions"`
	ActionItems    []generatedActionItem `json:"action_items"`
	FollowUpPoints []string              `json:"follow_up_points"`
	Summary        string                `json:"summary"`
}

type generatedActionItem struct {
	Task       string `json:"task"`
	AssignedTo string `json:"assigned_to"`
	DueDate    string `json:"due_date"`
	Priority   string `json:"priority"`
}

// GenerateMinutes produces structured minutes for the record. Generation and
// parse failures degrade to the deterministic fallback structure instead of
// erroring, so a transcript never blocks on the model.
func (s *MinutesService) GenerateMinutes(ctx context.Context, record *models.MeetingRecord) (*models.MeetingMinutes, error) {
	if record == nil {
		return nil, domain.NewValidationError("meeting record is required")
	}
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	output, err := s.Completer.Complete(ctx, minutesSystemPrompt, s.buildMinutesPrompt(record))
	if err != nil {
		if domain.IsUnauthenticated(err) {
			return nil, err
		}
		slog.WarnContext(ctx, "minutes generation request failed, using fallback",
			"meeting_id", record.MeetingID,
			logging.ErrKey, err,
		)
		return s.fallback(record), nil
	}

	parsed, err := parseGeneratedMinutes(output)
	if err != nil {
		slog.WarnContext(ctx, "model output not parseable, using fallback",
			"meeting_id", record.MeetingID,
			logging.ErrKey, err,
		)
		return s.fallback(record), nil
	}

	now := s.now().UTC()
	minutes := &models.MeetingMinutes{
		MeetingID:      record.MeetingID,
		MeetingTitle:   record.Title,
		Date:           record.StartTime,
		Agenda:         parsed.Agenda,
		KeyDecisions:   parsed.KeyDecisions,
		ActionItems:    convertActionItems(parsed.ActionItems),
		FollowUpPoints: parsed.FollowUpPoints,
		Summary:        parsed.Summary,
		CreatedAt:      &now,
	}
	return minutes, nil
}

// SummarizeTranscript produces a short prose summary of a transcript.
func (s *MinutesService) SummarizeTranscript(ctx context.Context, transcript string) (string, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return "", domain.ErrServiceUnavailable
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", domain.NewValidationError("transcript is empty")
	}

	summary, err := s.Completer.Complete(ctx, summarySystemPrompt, truncate(transcript, maxPromptTranscriptChars))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

func (s *MinutesService) buildMinutesPrompt(record *models.MeetingRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting title: %s\n", record.Title)
	fmt.Fprintf(&b, "Date: %s\n", record.StartTime.Format("2006-01-02"))
	if emails := record.ParticipantEmails(); len(emails) > 0 {
		fmt.Fprintf(&b, "Participants: %s\n", strings.Join(emails, ", "))
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(truncate(record.TranscriptText, maxPromptTranscriptChars))
	return b.String()
}

func (s *MinutesService) fallback(record *models.MeetingRecord) *models.MeetingMinutes {
	minutes := models.FallbackMinutes(record.MeetingID, record.Title, record.StartTime)
	now := s.now().UTC()
	minutes.CreatedAt = &now
	return minutes
}

// parseGeneratedMinutes decodes model output, tolerating markdown code
// fences around the JSON object.
func parseGeneratedMinutes(output string) (*generatedMinutes, error) {
	cleaned := stripCodeFence(output)
	if cleaned == "" {
		return nil, domain.NewInternalError("empty model output", domain.ErrUnmarshal)
	}

	var parsed generatedMinutes
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, domain.NewInternalError("decoding minutes output failed", domain.ErrUnmarshal, err)
	}
	return &parsed, nil
}

// stripCodeFence removes a surrounding markdown fence, with or without a
// language tag, and returns the trimmed payload.
func stripCodeFence(output string) string {
	cleaned := strings.TrimSpace(output)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		// Drop the fence line itself ("json", "JSON", or empty).
		cleaned = cleaned[idx+1:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func convertActionItems(items []generatedActionItem) []models.ActionItem {
	converted := make([]models.ActionItem, 0, len(items))
	for _, item := range items {
		task := strings.TrimSpace(item.Task)
		if task == "" {
			continue
		}
		converted = append(converted, models.ActionItem{
			ID:         uuid.New().String(),
			Task:       task,
			AssignedTo: strings.TrimSpace(item.AssignedTo),
			DueDate:    parseDueDate(item.DueDate),
			Priority:   normalizePriority(item.Priority),
			Status:     models.ActionItemStatusPending,
		})
	}
	return converted
}

func parseDueDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "null") {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}

func normalizePriority(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case models.ActionItemPriorityLow:
		return models.ActionItemPriorityLow
	case models.ActionItemPriorityHigh:
		return models.ActionItemPriorityHigh
	default:
		return models.ActionItemPriorityMedium
	}
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
