// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/service"
)

// flags are the command line flags for the minutes service.
type flags struct {
	Debug bool
	Once  bool
}

// environment are the environment variables for the minutes service.
type environment struct {
	NatsURL string

	OAuth     oauthConfig
	OpenAIKey string

	WhisperBaseURL string
	WhisperModel   string
	LLMBaseURL     string
	LLMModel       string

	Scheduler service.SchedulerConfig
	Service   service.ServiceConfig

	SyncOnStart bool
}

// oauthConfig holds the delegated OAuth client configuration.
type oauthConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string
	RedirectURL  string
}

// parseFlags parses command line flags for the minutes service
func parseFlags() flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var once = flag.Bool("once", false, "run a single transcript cycle and exit")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Once:  *once,
	}
}

// parseEnv parses environment variables for the minutes service. A local
// .env file is loaded first when present.
func parseEnv() environment {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.With(logging.ErrKey, err).Warn("error loading .env file")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		NatsURL:        natsURL,
		OAuth:          parseOAuthConfig(),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		WhisperBaseURL: os.Getenv("WHISPER_BASE_URL"),
		WhisperModel:   os.Getenv("WHISPER_MODEL"),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		Scheduler: service.SchedulerConfig{
			Interval:       durationEnv("SCHEDULE_INTERVAL"),
			CycleTimeout:   durationEnv("CYCLE_TIMEOUT"),
			MeetingTimeout: durationEnv("MEETING_TIMEOUT"),
			RecencyWindow:  durationEnv("RECENCY_WINDOW"),
		},
		Service: service.ServiceConfig{
			// Enabled unless explicitly turned off.
			AllowTimeOnlyMatch: os.Getenv("ALLOW_TIME_ONLY_MATCH") != "false",
			AudioFirst:         os.Getenv("AUDIO_FIRST") == "true",
			TranscriptFormat:   os.Getenv("TRANSCRIPT_FORMAT"),
			PlannerPlanID:      os.Getenv("PLANNER_PLAN_ID"),
			PlannerBucketID:    os.Getenv("PLANNER_BUCKET_ID"),
		},
		SyncOnStart: os.Getenv("SYNC_ON_START") == "true",
	}
}

// parseOAuthConfig parses the delegated OAuth client configuration from
// environment variables
func parseOAuthConfig() oauthConfig {
	clientID := os.Getenv("MS_CLIENT_ID")
	if clientID == "" {
		slog.Error("MS_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("MS_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("MS_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	tenantID := os.Getenv("MS_TENANT_ID")
	if tenantID == "" {
		tenantID = "common"
	}

	return oauthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TenantID:     tenantID,
		RedirectURL:  os.Getenv("MS_REDIRECT_URL"),
	}
}

// durationEnv parses a duration environment variable, returning zero when
// unset or invalid so the scheduler defaults apply.
func durationEnv(name string) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Warn("invalid duration, using default")
		return 0
	}
	return parsed
}
