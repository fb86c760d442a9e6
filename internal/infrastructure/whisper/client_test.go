// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: "key"})
	if client.config.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %s", client.config.BaseURL)
	}
	if client.config.Model != DefaultModel {
		t.Errorf("expected default model, got %s", client.config.Model)
	}
	if client.httpClient.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", client.httpClient.Timeout)
	}
}

func TestTranscribeBytes(t *testing.T) {
	var gotAuth string
	var gotModel, gotFormat, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotLanguage = r.FormValue("language")
		_, _ = w.Write([]byte(`{"text": "hello from the meeting", "language": "en", "duration": 12.5}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	result, err := client.TranscribeBytes(context.Background(), []byte("fake-audio"), "rec.mp4", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Text != "hello from the meeting" || result.Language != "en" || result.Duration != 12.5 {
		t.Errorf("unexpected result: %+v", result)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotModel != DefaultModel || gotFormat != "verbose_json" || gotLanguage != "en" {
		t.Errorf("unexpected form fields: model=%q format=%q language=%q", gotModel, gotFormat, gotLanguage)
	}
}

func TestTranscribeBytesEmptyInputs(t *testing.T) {
	client := NewClient(Config{APIKey: "secret"})

	result, err := client.TranscribeBytes(context.Background(), nil, "rec.mp4", "")
	if err != nil || result != nil {
		t.Errorf("expected nil, nil for empty audio, got %v, %v", result, err)
	}
}

func TestTranscribeBytesEmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	result, err := client.TranscribeBytes(context.Background(), []byte("silence"), "rec.mp4", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for empty transcript, got %+v", result)
	}
}

func TestTranscribeBytesErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		expectedType domain.ErrorType
	}{
		{name: "401 is unauthenticated", status: http.StatusUnauthorized, expectedType: domain.ErrorTypeUnauthenticated},
		{name: "429 is transient", status: http.StatusTooManyRequests, expectedType: domain.ErrorTypeTransient},
		{name: "500 is transient", status: http.StatusInternalServerError, expectedType: domain.ErrorTypeTransient},
		{name: "400 is internal", status: http.StatusBadRequest, expectedType: domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
			_, err := client.TranscribeBytes(context.Background(), []byte("audio"), "rec.mp4", "")
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := domain.GetErrorType(err); got != tt.expectedType {
				t.Errorf("expected error type %v, got %v", tt.expectedType, got)
			}
		})
	}
}

func TestTranscribeBytesMissingAPIKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.TranscribeBytes(context.Background(), []byte("audio"), "rec.mp4", "")
	if !domain.IsUnauthenticated(err) {
		t.Errorf("expected unauthenticated error without API key, got %v", err)
	}
}

func TestTranscribeBytesOversizeAudio(t *testing.T) {
	client := NewClient(Config{APIKey: "secret"})
	_, err := client.TranscribeBytes(context.Background(), make([]byte, MaxAudioBytes+1), "rec.mp4", "")
	if domain.GetErrorType(err) != domain.ErrorTypeValidation {
		t.Errorf("expected validation error for oversize audio, got %v", err)
	}
}

func TestTranscribeFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "file transcript"}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "meeting.mp4")
	if err := os.WriteFile(path, []byte("fake-audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	result, err := client.TranscribeFile(context.Background(), path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Text != "file transcript" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestTranscribeFileMissing(t *testing.T) {
	client := NewClient(Config{APIKey: "secret"})
	_, err := client.TranscribeFile(context.Background(), "/nonexistent/audio.mp4", "")
	if domain.GetErrorType(err) != domain.ErrorTypeValidation {
		t.Errorf("expected validation error for missing file, got %v", err)
	}
}
