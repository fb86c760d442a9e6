// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// Transcript content formats. VTT is the structured caption format the
// normalizer expects; the others are accepted fallbacks.
const (
	TranscriptFormatVTT   = "text/vtt"
	TranscriptFormatHTML  = "text/html"
	TranscriptFormatPlain = "text/plain"
)

// MeetingAttendee is an attendee entry on an online-meeting resource. The
// provider populates different fields depending on endpoint version: the
// beta shape carries a upn, the alternate shape nests an email address or an
// identity display name.
type MeetingAttendee struct {
	Upn          string        `json:"upn,omitempty"`
	Role         string        `json:"role,omitempty"`
	EmailAddress *EmailAddress `json:"emailAddress,omitempty"`
	Identity     *struct {
		User *struct {
			ID          string `json:"id,omitempty"`
			DisplayName string `json:"displayName,omitempty"`
		} `json:"user,omitempty"`
	} `json:"identity,omitempty"`
}

// MeetingParticipants is the participants sub-object of an online meeting.
type MeetingParticipants struct {
	Organizer *MeetingAttendee  `json:"organizer,omitempty"`
	Attendees []MeetingAttendee `json:"attendees,omitempty"`
}

// OnlineMeeting is the provider resource for an actual meeting session,
// distinct from the calendar event that scheduled it.
type OnlineMeeting struct {
	ID            string               `json:"id"`
	Subject       string               `json:"subject,omitempty"`
	StartDateTime string               `json:"startDateTime,omitempty"`
	EndDateTime   string               `json:"endDateTime,omitempty"`
	JoinWebURL    string               `json:"joinWebUrl,omitempty"`
	Participants  *MeetingParticipants `json:"participants,omitempty"`
}

// Interval parses the meeting's start and end timestamps. ok is false when
// either is missing or unparsable; such meetings cannot be time-matched.
func (m *OnlineMeeting) Interval() (start, end time.Time, ok bool) {
	start, err1 := parseGraphTime(m.StartDateTime)
	end, err2 := parseGraphTime(m.EndDateTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Duration returns the length of the meeting session, or zero when the
// interval is unknown.
func (m *OnlineMeeting) Duration() time.Duration {
	start, end, ok := m.Interval()
	if !ok || end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// AttendeeUPNs returns the lowercased attendee user principal names (the
// beta endpoint shape).
func (m *OnlineMeeting) AttendeeUPNs() []string {
	if m.Participants == nil {
		return nil
	}
	upns := make([]string, 0, len(m.Participants.Attendees))
	for _, a := range m.Participants.Attendees {
		if a.Upn == "" {
			continue
		}
		upns = append(upns, strings.ToLower(a.Upn))
	}
	return upns
}

// AttendeeEmails returns lowercased attendee addresses from the alternate
// response shape, where attendees carry an emailAddress object instead of a
// upn. Entries with neither are skipped.
func (m *OnlineMeeting) AttendeeEmails() []string {
	if m.Participants == nil {
		return nil
	}
	emails := make([]string, 0, len(m.Participants.Attendees))
	for _, a := range m.Participants.Attendees {
		if a.EmailAddress == nil || a.EmailAddress.Address == "" {
			continue
		}
		emails = append(emails, strings.ToLower(a.EmailAddress.Address))
	}
	return emails
}

func parseGraphTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Transcript is a caption-track artifact of an online meeting.
type Transcript struct {
	ID                   string `json:"id"`
	MeetingID            string `json:"meetingId,omitempty"`
	CreatedDateTime      string `json:"createdDateTime,omitempty"`
	LastModifiedDateTime string `json:"lastModifiedDateTime,omitempty"`
	EndDateTime          string `json:"endDateTime,omitempty"`
	StartDateTime        string `json:"startDateTime,omitempty"`
}

// SortKey returns the deterministic recency key for transcript selection:
// creation time, falling back through last-modified, end, and start times to
// the zero time. Selection by maximum key therefore never depends on
// iteration order for artifacts with any timestamp at all.
func (t *Transcript) SortKey() time.Time {
	for _, raw := range []string{t.CreatedDateTime, t.LastModifiedDateTime, t.EndDateTime, t.StartDateTime} {
		if parsed, err := parseGraphTime(raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// Recording is a media artifact of an online meeting.
type Recording struct {
	ID              string `json:"id"`
	MeetingID       string `json:"meetingId,omitempty"`
	CreatedDateTime string `json:"createdDateTime,omitempty"`
	ContentURL      string `json:"recordingContentUrl,omitempty"`
}

// GetOnlineMeetingByJoinURL looks up the online meeting whose join URL
// matches exactly, using the provider-side filter. Returns a not-found error
// when no meeting matches.
func (c *Client) GetOnlineMeetingByJoinURL(ctx context.Context, token, joinURL string) (*OnlineMeeting, error) {
	// OData string literal escaping: single quotes doubled.
	sanitized := strings.ReplaceAll(joinURL, "'", "''")
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("joinWebUrl eq '%s'", sanitized))
	u := c.config.BetaBaseURL + "/me/onlineMeetings?" + query.Encode()

	meetings, err := getPaged[OnlineMeeting](ctx, c, token, u, "")
	if err != nil {
		return nil, err
	}
	if len(meetings) == 0 {
		return nil, domain.NewNotFoundError("no online meeting matches join URL")
	}
	return &meetings[0], nil
}

// ListOnlineMeetings lists every online meeting the user owns. The provider
// forbids server-side time filtering on this collection, so callers page
// through everything and filter locally.
func (c *Client) ListOnlineMeetings(ctx context.Context, token string) ([]OnlineMeeting, error) {
	u := c.config.BetaBaseURL + "/me/onlineMeetings"
	return getPaged[OnlineMeeting](ctx, c, token, u, "")
}

// ListTranscripts lists the transcript artifacts of an online meeting.
func (c *Client) ListTranscripts(ctx context.Context, token, meetingID string) ([]Transcript, error) {
	u := c.config.BetaBaseURL + "/me/onlineMeetings/" + url.PathEscape(meetingID) + "/transcripts"
	return getPaged[Transcript](ctx, c, token, u, "")
}

// GetTranscriptContent fetches transcript content, negotiating the format.
// The preferred format is requested first via $format and Accept; on 404/406
// the bare content URL is tried before giving up. Transient failures retry
// with backoff, honoring Retry-After.
func (c *Client) GetTranscriptContent(ctx context.Context, token, meetingID, transcriptID, format string) (string, error) {
	accept := normalizeFormat(format)
	acceptValues := []string{}
	if accept != "" {
		acceptValues = append(acceptValues, accept)
	}
	if accept != TranscriptFormatVTT {
		acceptValues = append(acceptValues, TranscriptFormatVTT)
	}
	acceptValues = append(acceptValues, "*/*")
	acceptHeader := strings.Join(acceptValues, ", ")

	base := c.config.BetaBaseURL + "/me/onlineMeetings/" + url.PathEscape(meetingID) +
		"/transcripts/" + url.PathEscape(transcriptID) + "/content"

	urls := []string{}
	if accept != "" {
		urls = append(urls, base+"?$format="+url.QueryEscape(accept))
	}
	urls = append(urls, base)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		sawTransient := false
		for _, u := range urls {
			// Per-URL probing owns the 404/406 fallthrough, so transient
			// retries are handled by this outer loop instead of doRequest.
			resp, err := c.doRequest(ctx, request{
				method:  http.MethodGet,
				url:     u,
				token:   token,
				accept:  acceptHeader,
				noRetry: true,
			})
			if err != nil {
				return "", err
			}

			if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNotAcceptable {
				lastErr = statusError(resp)
				_ = resp.Body.Close()
				continue
			}

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				sawTransient = true
				backoff := c.calculateBackoff(attempt, resp)
				lastErr = statusError(resp)
				_ = resp.Body.Close()
				slog.WarnContext(ctx, "transcript content transient error, backing off",
					"status", resp.StatusCode,
					"backoff", backoff.String(),
					"attempt", attempt+1,
				)
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(backoff):
				}
				continue
			}

			if resp.StatusCode != http.StatusOK {
				err := statusError(resp)
				_ = resp.Body.Close()
				return "", err
			}

			content, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return "", domain.NewTransientError("failed to read transcript content", err)
			}
			slog.DebugContext(ctx, "transcript content fetched",
				"content_type", resp.Header.Get("Content-Type"),
				"length", len(content),
			)
			return string(content), nil
		}

		// 404/406 means the content genuinely is not there in that shape;
		// only transient statuses earn another pass over the URLs.
		if !sawTransient {
			break
		}
	}

	if lastErr == nil {
		lastErr = domain.NewNotFoundError("transcript content unavailable")
	}
	slog.WarnContext(ctx, "transcript content unavailable after all attempts", logging.ErrKey, lastErr)
	return "", lastErr
}

// normalizeFormat maps loose format names onto provider-accepted mime types.
func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "vtt", TranscriptFormatVTT:
		return TranscriptFormatVTT
	case "html", TranscriptFormatHTML:
		return TranscriptFormatHTML
	case "plain", TranscriptFormatPlain:
		// The provider typically serves VTT; plain text is negotiated via
		// Accept only.
		return ""
	default:
		return TranscriptFormatVTT
	}
}

// ListRecordings lists the recording artifacts of an online meeting.
func (c *Client) ListRecordings(ctx context.Context, token, meetingID string) ([]Recording, error) {
	u := c.config.BetaBaseURL + "/me/onlineMeetings/" + url.PathEscape(meetingID) + "/recordings"
	return getPaged[Recording](ctx, c, token, u, "")
}

// DownloadRecording downloads a recording's media content. Uses the download
// client, which allows much longer reads than ordinary API calls.
func (c *Client) DownloadRecording(ctx context.Context, token, meetingID, recordingID string) ([]byte, error) {
	u := c.config.BetaBaseURL + "/me/onlineMeetings/" + url.PathEscape(meetingID) +
		"/recordings/" + url.PathEscape(recordingID) + "/content"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, domain.NewTransientError("recording download failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransientError("failed to read recording content", err)
	}

	slog.DebugContext(ctx, "downloaded recording",
		"recording_id", recordingID,
		"bytes", len(content),
	)
	return content, nil
}
