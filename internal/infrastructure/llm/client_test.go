// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

func TestComplete(t *testing.T) {
	var gotRequest chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "generated minutes"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "test-model"})
	out, err := client.Complete(context.Background(), "you summarize meetings", "transcript here")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "generated minutes" {
		t.Errorf("unexpected output: %q", out)
	}
	if gotRequest.Model != "test-model" {
		t.Errorf("unexpected model: %q", gotRequest.Model)
	}
	if len(gotRequest.Messages) != 2 || gotRequest.Messages[0].Role != "system" || gotRequest.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotRequest.Messages)
	}
}

func TestCompleteOmitsEmptySystemPrompt(t *testing.T) {
	var gotRequest chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), "  ", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gotRequest.Messages) != 1 || gotRequest.Messages[0].Role != "user" {
		t.Errorf("expected only a user message, got %+v", gotRequest.Messages)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedType domain.ErrorType
	}{
		{name: "401", status: http.StatusUnauthorized, expectedType: domain.ErrorTypeUnauthenticated},
		{name: "429", status: http.StatusTooManyRequests, expectedType: domain.ErrorTypeTransient},
		{name: "500", status: http.StatusInternalServerError, expectedType: domain.ErrorTypeTransient},
		{name: "400", status: http.StatusBadRequest, expectedType: domain.ErrorTypeInternal},
		{name: "empty choices", status: http.StatusOK, body: `{"choices": []}`, expectedType: domain.ErrorTypeInternal},
		{name: "blank content", status: http.StatusOK, body: `{"choices": [{"message": {"content": "  "}}]}`, expectedType: domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
			_, err := client.Complete(context.Background(), "sys", "user")
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := domain.GetErrorType(err); got != tt.expectedType {
				t.Errorf("expected error type %v, got %v (%v)", tt.expectedType, got, err)
			}
		})
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), "sys", "user")
	if !domain.IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated error without API key, got %v", err)
	}
}
