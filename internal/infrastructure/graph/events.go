// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

// preferUTC asks the provider to render event times in UTC.
const preferUTC = `outlook.timezone="UTC"`

// eventSelectFields are the calendar-event fields the sync and resolver need.
const eventSelectFields = "id,subject,start,end,attendees,organizer,isOnlineMeeting,onlineMeetingUrl,onlineMeeting,bodyPreview,body"

// DateTimeTimeZone is the provider's date/time-with-zone wrapper.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Time parses the wrapped timestamp. The provider omits the zone designator
// when a Prefer header pins the timezone, so bare timestamps are read as UTC.
func (d *DateTimeTimeZone) Time() (time.Time, error) {
	if d == nil || d.DateTime == "" {
		return time.Time{}, fmt.Errorf("empty dateTime")
	}
	raw := strings.TrimSuffix(d.DateTime, "Z")
	for _, layout := range []string{"2006-01-02T15:04:05.9999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Parse(time.RFC3339, d.DateTime)
}

// EmailAddress is the provider's name/address pair.
type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// EventAttendee is an attendee on a calendar event.
type EventAttendee struct {
	Type         string        `json:"type,omitempty"`
	EmailAddress *EmailAddress `json:"emailAddress,omitempty"`
}

// EventBody is the calendar event body content.
type EventBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content,omitempty"`
}

// EventOnlineMeetingInfo is the online-meeting sub-resource embedded on a
// calendar event. Despite the name overlap it is not the online-meeting
// resource itself; only the join URL (and sometimes an id) is populated.
type EventOnlineMeetingInfo struct {
	ID      string `json:"id,omitempty"`
	JoinURL string `json:"joinUrl,omitempty"`
}

// CalendarEvent is a provider calendar event.
type CalendarEvent struct {
	ID               string                  `json:"id"`
	Subject          string                  `json:"subject,omitempty"`
	Start            *DateTimeTimeZone       `json:"start,omitempty"`
	End              *DateTimeTimeZone       `json:"end,omitempty"`
	Attendees        []EventAttendee         `json:"attendees,omitempty"`
	Organizer        *EventAttendee          `json:"organizer,omitempty"`
	IsOnlineMeeting  bool                    `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingURL string                  `json:"onlineMeetingUrl,omitempty"`
	OnlineMeeting    *EventOnlineMeetingInfo `json:"onlineMeeting,omitempty"`
	BodyPreview      string                  `json:"bodyPreview,omitempty"`
	Body             *EventBody              `json:"body,omitempty"`
}

// JoinURL returns the event's session-invitation link, preferring the
// embedded online-meeting sub-resource over the legacy top-level field.
func (e *CalendarEvent) JoinURL() string {
	if e.OnlineMeeting != nil && e.OnlineMeeting.JoinURL != "" {
		return e.OnlineMeeting.JoinURL
	}
	return e.OnlineMeetingURL
}

// AttendeeEmails returns the lowercased attendee email addresses.
func (e *CalendarEvent) AttendeeEmails() []string {
	emails := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		if a.EmailAddress == nil || a.EmailAddress.Address == "" {
			continue
		}
		emails = append(emails, strings.ToLower(a.EmailAddress.Address))
	}
	return emails
}

// ListCalendarView lists the user's calendar events in [start, end],
// following pagination until the view is exhausted.
func (c *Client) ListCalendarView(ctx context.Context, token string, start, end time.Time) ([]CalendarEvent, error) {
	query := url.Values{}
	query.Set("startDateTime", start.UTC().Format(time.RFC3339))
	query.Set("endDateTime", end.UTC().Format(time.RFC3339))
	query.Set("$select", eventSelectFields)

	u := c.config.BaseURL + "/me/calendarView?" + query.Encode()
	return getPaged[CalendarEvent](ctx, c, token, u, preferUTC)
}

// GetEvent fetches one calendar event by id with the fields needed for
// online-meeting resolution. Returns a not-found error for unknown ids.
func (c *Client) GetEvent(ctx context.Context, token, eventID string) (*CalendarEvent, error) {
	query := url.Values{}
	query.Set("$select", eventSelectFields)
	u := c.config.BaseURL + "/me/events/" + url.PathEscape(eventID) + "?" + query.Encode()

	resp, err := c.doRequest(ctx, request{
		method: http.MethodGet,
		url:    u,
		token:  token,
		prefer: preferUTC,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var event CalendarEvent
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to decode calendar event: %w", err)
	}
	return &event, nil
}

// GetEventOnlineMeeting selects the event's embedded online-meeting
// sub-resource. The beta endpoint is required; v1.0 does not expose the
// onlineMeeting select on events. Returns a not-found error when the event
// has no online meeting attached.
func (c *Client) GetEventOnlineMeeting(ctx context.Context, token, eventID string) (*EventOnlineMeetingInfo, error) {
	query := url.Values{}
	query.Set("$select", "onlineMeeting,onlineMeetingUrl,onlineMeetingProvider")
	u := c.config.BetaBaseURL + "/me/events/" + url.PathEscape(eventID) + "?" + query.Encode()

	resp, err := c.doRequest(ctx, request{
		method: http.MethodGet,
		url:    u,
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var parsed struct {
		OnlineMeeting *EventOnlineMeetingInfo `json:"onlineMeeting"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode event online meeting: %w", err)
	}
	if parsed.OnlineMeeting == nil {
		return nil, domain.NewNotFoundError("event has no online meeting")
	}
	return parsed.OnlineMeeting, nil
}
