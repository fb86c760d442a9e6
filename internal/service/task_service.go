// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/graph"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// TaskService pushes generated action items out to assignees: a planner task
// when a plan is configured, an email notification otherwise or when task
// creation fails. Assignment never fails the minutes pipeline.
type TaskService struct {
	GraphClient graph.ClientAPI
	Config      ServiceConfig
}

// NewTaskService creates a new TaskService.
func NewTaskService(graphClient graph.ClientAPI, config ServiceConfig) *TaskService {
	return &TaskService{
		GraphClient: graphClient,
		Config:      config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TaskService) ServiceReady() bool {
	return s.GraphClient != nil
}

// AssignActionItems delivers each action item to its assignee, mutating the
// items in place with the delivery outcome.
func (s *TaskService) AssignActionItems(ctx context.Context, token string, minutes *models.MeetingMinutes) {
	if !s.ServiceReady() || minutes == nil {
		return
	}

	assigned := 0
	for i := range minutes.ActionItems {
		item := &minutes.ActionItems[i]
		if item.AssignedTo == "" {
			continue
		}
		if s.assignItem(ctx, token, minutes.MeetingTitle, item) {
			assigned++
		}
	}

	slog.InfoContext(ctx, "action items assigned",
		"meeting_id", minutes.MeetingID,
		"items", len(minutes.ActionItems),
		"assigned", assigned,
	)
}

func (s *TaskService) assignItem(ctx context.Context, token, meetingTitle string, item *models.ActionItem) bool {
	if s.Config.PlannerPlanID != "" {
		if s.createPlannerTask(ctx, token, meetingTitle, item) {
			return true
		}
	}
	return s.sendAssignmentMail(ctx, token, meetingTitle, item)
}

func (s *TaskService) createPlannerTask(ctx context.Context, token, meetingTitle string, item *models.ActionItem) bool {
	request := &graph.CreatePlannerTaskRequest{
		PlanID:   s.Config.PlannerPlanID,
		BucketID: s.Config.PlannerBucketID,
		Title:    fmt.Sprintf("[%s] %s", meetingTitle, item.Task),
		Assignments: map[string]graph.PlannerAssignment{
			item.AssignedTo: graph.NewPlannerAssignment(),
		},
	}
	if item.DueDate != nil {
		request.DueDateTime = graph.FormatDueDate(*item.DueDate)
	}

	task, err := s.GraphClient.CreatePlannerTask(ctx, token, request)
	if err != nil {
		slog.WarnContext(ctx, "planner task creation failed, falling back to email",
			"task", item.Task,
			"assigned_to", item.AssignedTo,
			logging.ErrKey, err,
		)
		return false
	}

	item.Source = "planner"
	item.ExternalID = task.ID
	return true
}

func (s *TaskService) sendAssignmentMail(ctx context.Context, token, meetingTitle string, item *models.ActionItem) bool {
	subject := fmt.Sprintf("Action item from %s", meetingTitle)
	body := buildAssignmentBody(meetingTitle, item)

	if err := s.GraphClient.SendMail(ctx, token, item.AssignedTo, subject, body); err != nil {
		slog.WarnContext(ctx, "action item email failed",
			"task", item.Task,
			"assigned_to", item.AssignedTo,
			logging.ErrKey, err,
		)
		return false
	}

	item.Source = "email"
	return true
}

func buildAssignmentBody(meetingTitle string, item *models.ActionItem) string {
	var b strings.Builder
	b.WriteString("<p>You have been assigned an action item from the meeting ")
	b.WriteString(fmt.Sprintf("<strong>%s</strong>.</p>", meetingTitle))
	b.WriteString(fmt.Sprintf("<p>%s</p>", item.Task))
	if item.DueDate != nil {
		b.WriteString(fmt.Sprintf("<p>Due: %s</p>", item.DueDate.Format("2006-01-02")))
	}
	if item.Priority != "" {
		b.WriteString(fmt.Sprintf("<p>Priority: %s</p>", item.Priority))
	}
	return b.String()
}
