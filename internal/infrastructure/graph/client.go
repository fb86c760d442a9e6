// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package graph is a typed client for the calendar/online-meeting provider
// API. It covers the calls the transcript resolver and sync services need:
// calendar views, online-meeting lookup, transcripts, recordings, planner
// tasks, and mail.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// BaseURL is the v1.0 base URL for the provider API.
	BaseURL = "https://graph.microsoft.com/v1.0"
	// BetaBaseURL is the beta base URL; online-meeting transcript and
	// recording resources are only exposed there.
	BetaBaseURL = "https://graph.microsoft.com/beta"
	// DefaultClientTimeout is the default HTTP client timeout.
	DefaultClientTimeout = 30 * time.Second
	// DefaultDownloadTimeout is the timeout used for recording downloads,
	// which can be large media files.
	DefaultDownloadTimeout = 5 * time.Minute
	// Default retry configuration
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// ClientAPI defines the interface for provider API operations. It allows for
// easy mocking and testing of the client.
type ClientAPI interface {
	ListCalendarView(ctx context.Context, token string, start, end time.Time) ([]CalendarEvent, error)
	GetEvent(ctx context.Context, token, eventID string) (*CalendarEvent, error)
	GetEventOnlineMeeting(ctx context.Context, token, eventID string) (*EventOnlineMeetingInfo, error)
	GetOnlineMeetingByJoinURL(ctx context.Context, token, joinURL string) (*OnlineMeeting, error)
	ListOnlineMeetings(ctx context.Context, token string) ([]OnlineMeeting, error)
	ListTranscripts(ctx context.Context, token, meetingID string) ([]Transcript, error)
	GetTranscriptContent(ctx context.Context, token, meetingID, transcriptID, format string) (string, error)
	ListRecordings(ctx context.Context, token, meetingID string) ([]Recording, error)
	DownloadRecording(ctx context.Context, token, meetingID, recordingID string) ([]byte, error)
	CreatePlannerTask(ctx context.Context, token string, request *CreatePlannerTaskRequest) (*PlannerTask, error)
	SendMail(ctx context.Context, token, toEmail, subject, body string) error
}

// Client is an HTTP client for the provider API. Calls take the bearer token
// explicitly because the service acts on behalf of whichever credential
// holder the scheduler is processing.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	config         Config
}

// Config holds the configuration for the provider API client.
type Config struct {
	// Optional: override base URLs for testing
	BaseURL     string
	BetaBaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: override timeout for recording downloads
	DownloadTimeout time.Duration
	// Optional: retry configuration. MaxRetries < 0 disables retries.
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// Ensure that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)

// NewClient creates a new provider API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.BetaBaseURL == "" {
		config.BetaBaseURL = BetaBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.DownloadTimeout == 0 {
		config.DownloadTimeout = DefaultDownloadTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = DefaultMaxRetries
	}
	if config.MaxRetries < 0 {
		// Negative disables retries entirely.
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = DefaultInitialBackoff
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = DefaultMaxBackoff
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = DefaultBackoffMultiplier
	}

	transport := otelhttp.NewTransport(http.DefaultTransport)

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		downloadClient: &http.Client{
			Timeout:   config.DownloadTimeout,
			Transport: transport,
		},
		config: config,
	}
}

// shouldRetry determines if an error or HTTP status code should be retried
func shouldRetry(statusCode int, err error) bool {
	// Don't retry if context was cancelled
	if err != nil {
		if ctx, ok := err.(interface{ Err() error }); ok {
			if ctx.Err() == context.Canceled || ctx.Err() == context.DeadlineExceeded {
				return false
			}
		}
	}

	// Retry on network/connection errors
	if err != nil {
		return true
	}

	// Retry on server errors (5xx)
	if statusCode >= 500 && statusCode < 600 {
		return true
	}

	// Retry on rate limiting (429)
	if statusCode == http.StatusTooManyRequests {
		return true
	}

	// Don't retry on client errors (4xx)
	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt with
// jitter, honoring a server-provided Retry-After when one is present.
func (c *Client) calculateBackoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	if attempt <= 0 {
		return c.config.InitialBackoff
	}

	// Exponential backoff capped at the max
	backoff := float64(c.config.InitialBackoff) * math.Pow(c.config.BackoffMultiplier, float64(attempt))
	if time.Duration(backoff) > c.config.MaxBackoff {
		backoff = float64(c.config.MaxBackoff)
	}

	// Add jitter (±25%) to prevent thundering herd
	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoffWithJitter := time.Duration(backoff + jitter)
	if backoffWithJitter < c.config.InitialBackoff {
		backoffWithJitter = c.config.InitialBackoff
	}

	return backoffWithJitter
}

// request describes one provider API call.
type request struct {
	method string
	// url is the absolute URL; paged calls pass the provider's nextLink here.
	url    string
	token  string
	accept string
	body   any
	// prefer sets the Prefer header (calendar views ask for UTC times).
	prefer string
	// noRetry disables transient retries; content-negotiation probes handle
	// 404/406 themselves and want the first response back immediately.
	noRetry bool
}

// doRequest performs an authenticated request with retry on transient
// failures. The response body is returned unread; callers own closing it.
func (c *Client) doRequest(ctx context.Context, req request) (*http.Response, error) {
	jsonBody, err := c.marshalRequestBody(req.body)
	if err != nil {
		return nil, err
	}

	maxRetries := c.config.MaxRetries
	if req.noRetry {
		maxRetries = 0
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= maxRetries; attempt++ {
		httpReq, err := c.createRequest(ctx, req, jsonBody)
		if err != nil {
			return nil, err
		}

		slog.DebugContext(ctx, "making provider API request",
			"method", req.method,
			"url", req.url,
			"attempt", attempt,
			"max_retries", maxRetries,
		)

		startTime := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		duration := time.Since(startTime)

		if err == nil && resp != nil && !shouldRetry(resp.StatusCode, nil) {
			slog.DebugContext(ctx, "provider API request completed",
				"method", req.method,
				"url", req.url,
				"status", resp.StatusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
			)
			return resp, nil
		}

		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		lastErr, lastResp = err, resp

		statusCode := 0
		if resp != nil {
			statusCode = resp.StatusCode
		}

		if !shouldRetry(statusCode, err) {
			slog.ErrorContext(ctx, "provider API request failed (not retryable)",
				"method", req.method,
				"url", req.url,
				"status", statusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
				logging.ErrKey, err)
			break
		}

		if attempt < maxRetries {
			backoff := c.calculateBackoff(attempt, resp)
			slog.WarnContext(ctx, "provider API request failed, retrying",
				"method", req.method,
				"url", req.url,
				"status", statusCode,
				"duration", duration.String(),
				"attempt", attempt+1,
				"backoff", backoff.String(),
				logging.ErrKey, err)

			select {
			case <-ctx.Done():
				if lastResp != nil {
					_ = lastResp.Body.Close()
				}
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		} else {
			slog.ErrorContext(ctx, "provider API request failed after all retries",
				"method", req.method,
				"url", req.url,
				"status", statusCode,
				"attempts", attempt+1,
				logging.ErrKey, err,
				logging.PriorityCritical())
		}
	}

	if lastErr != nil {
		if lastResp != nil {
			_ = lastResp.Body.Close()
		}
		return nil, domain.NewTransientError(
			fmt.Sprintf("request failed after %d attempts", maxRetries+1), lastErr)
	}

	return lastResp, nil
}

func (c *Client) marshalRequestBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return jsonBody, nil
}

func (c *Client) createRequest(ctx context.Context, req request, jsonBody []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.token)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}
	return httpReq, nil
}

// statusError maps a non-success provider response onto the domain error
// taxonomy: 404 and 406 are expected not-found conditions that drive strategy
// fallthrough, 401 is a credential failure fatal for the holder's batch,
// 429/5xx are transient, and everything else is fatal for the call only.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := parseErrorMessage(body, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNotAcceptable:
		return domain.NewNotFoundError(message)
	case resp.StatusCode == http.StatusUnauthorized:
		return domain.NewUnauthenticatedError(message)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return domain.NewTransientError(message)
	default:
		return domain.NewInternalError(message)
	}
}

// parseErrorMessage attempts to parse a provider API error response body.
func parseErrorMessage(body []byte, statusCode int) string {
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Sprintf("provider API error (status %d, code %s): %s",
			statusCode, errResp.Error.Code, errResp.Error.Message)
	}
	return fmt.Sprintf("provider API error (status %d)", statusCode)
}

// listPage is the generic shape of the provider's paged collections.
type listPage[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// getPaged follows @odata.nextLink until the collection is exhausted. A 404
// surfaces as a not-found domain error; callers treat that as an absent
// collection rather than a failure.
func getPaged[T any](ctx context.Context, c *Client, token, url, prefer string) ([]T, error) {
	var items []T
	page := 1

	for url != "" {
		resp, err := c.doRequest(ctx, request{
			method: http.MethodGet,
			url:    url,
			token:  token,
			prefer: prefer,
		})
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			err := statusError(resp)
			_ = resp.Body.Close()
			return nil, err
		}

		var parsed listPage[T]
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		_ = resp.Body.Close()
		if err != nil {
			return nil, domain.NewInternalError("failed to decode provider API response", err)
		}

		items = append(items, parsed.Value...)
		slog.DebugContext(ctx, "fetched provider API page",
			"page", page,
			"batch", len(parsed.Value),
			"cumulative", len(items),
		)

		url = parsed.NextLink
		page++
	}

	return items, nil
}
