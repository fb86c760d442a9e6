// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

// CreatePlannerTaskRequest is the payload for creating a planner task from an
// action item.
type CreatePlannerTaskRequest struct {
	PlanID      string                       `json:"planId"`
	BucketID    string                       `json:"bucketId,omitempty"`
	Title       string                       `json:"title"`
	DueDateTime string                       `json:"dueDateTime,omitempty"`
	Assignments map[string]PlannerAssignment `json:"assignments,omitempty"`
}

// PlannerAssignment assigns a task to a user within a plan.
type PlannerAssignment struct {
	ODataType string `json:"@odata.type"`
	OrderHint string `json:"orderHint"`
}

// NewPlannerAssignment returns the assignment object the provider expects for
// a single assignee.
func NewPlannerAssignment() PlannerAssignment {
	return PlannerAssignment{
		ODataType: "#microsoft.graph.plannerAssignedToTaskBoardTaskFormat",
		OrderHint: " !",
	}
}

// FormatDueDate renders a due date in the UTC Z form planner requires.
func FormatDueDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// PlannerTask is the created task resource.
type PlannerTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PlanID      string `json:"planId"`
	BucketID    string `json:"bucketId,omitempty"`
	DueDateTime string `json:"dueDateTime,omitempty"`
}

// CreatePlannerTask creates a task in the configured plan.
func (c *Client) CreatePlannerTask(ctx context.Context, token string, req *CreatePlannerTaskRequest) (*PlannerTask, error) {
	u := c.config.BaseURL + "/planner/tasks"

	resp, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		url:    u,
		token:  token,
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var task PlannerTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, domain.NewInternalError("failed to decode planner task response", err)
	}

	slog.InfoContext(ctx, "created planner task",
		"task_id", task.ID,
		"plan_id", task.PlanID,
		"title", task.Title,
	)
	return &task, nil
}

// sendMailRequest is the payload shape for the sendMail action.
type sendMailRequest struct {
	Message         mailMessage `json:"message"`
	SaveToSentItems bool        `json:"saveToSentItems"`
}

type mailMessage struct {
	Subject      string          `json:"subject"`
	Body         mailBody        `json:"body"`
	ToRecipients []mailRecipient `json:"toRecipients"`
}

type mailBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type mailRecipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// SendMail sends an HTML email as the token's user. Used as the notification
// channel when an action item cannot be turned into a planner task.
func (c *Client) SendMail(ctx context.Context, token, toEmail, subject, body string) error {
	u := c.config.BaseURL + "/me/sendMail"

	payload := sendMailRequest{
		Message: mailMessage{
			Subject: subject,
			Body: mailBody{
				ContentType: "HTML",
				Content:     body,
			},
			ToRecipients: []mailRecipient{
				{EmailAddress: EmailAddress{Address: toEmail}},
			},
		},
		SaveToSentItems: true,
	}

	resp, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		url:    u,
		token:  token,
		body:   payload,
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	slog.InfoContext(ctx, "sent notification email", "to", toEmail, "subject", subject)
	return nil
}
