// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the minutes service daemon: it syncs calendar meetings into
// the store, resolves transcripts for recent meetings on a schedule, and
// generates structured minutes from them.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/graph"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/llm"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/infrastructure/whisper"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/service"
)

func main() {
	flags := parseFlags()
	env := parseEnv()

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		os.Exit(1)
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	publisher := messaging.NewNatsPublisher(natsConn)

	graphClient := graph.NewClient(graph.Config{})
	authService := service.NewAuthService(repos.Token, setupOAuthConfig(env))

	// The audio transcription engine and the minutes generator both need an
	// API key; without one the service runs caption-only with no minutes.
	var transcriber domain.AudioTranscriber
	var generator domain.MinutesGenerator
	if env.OpenAIKey != "" {
		transcriber = whisper.NewClient(whisper.Config{
			APIKey:  env.OpenAIKey,
			BaseURL: env.WhisperBaseURL,
			Model:   env.WhisperModel,
		})
		generator = service.NewMinutesService(llm.NewClient(llm.Config{
			APIKey:  env.OpenAIKey,
			BaseURL: env.LLMBaseURL,
			Model:   env.LLMModel,
		}))
	} else {
		slog.Warn("OPENAI_API_KEY not set, audio transcription and minutes generation disabled")
	}

	resolver := service.NewResolverService(graphClient, transcriber, env.Service)
	taskService := service.NewTaskService(graphClient, env.Service)
	syncService := service.NewSyncService(graphClient, repos.Meeting, authService)
	analyticsService := service.NewAnalyticsService(repos.Meeting)
	scheduler := service.NewTranscriptScheduler(
		repos.Meeting,
		repos.Minutes,
		authService,
		resolver,
		generator,
		taskService,
		publisher,
		env.Scheduler,
	)

	if err := subscribeMeetingStats(ctx, natsConn, analyticsService); err != nil {
		slog.With(logging.ErrKey, err).Error("error subscribing to meeting stats subject")
		return
	}

	if env.SyncOnStart {
		runInitialSync(ctx, syncService, authService)
	}

	if flags.Once {
		scheduler.RunCycle(ctx)
		drainNATS(natsConn, &gracefulCloseWG)
		return
	}

	if err := scheduler.Start(ctx); err != nil {
		slog.With(logging.ErrKey, err).Error("error starting transcript scheduler")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	scheduler.Stop()
	drainNATS(natsConn, &gracefulCloseWG)
	cancel()
}

// runInitialSync pulls the last day of calendar events for every credential
// holder so freshly registered tenants have records to resolve.
func runInitialSync(ctx context.Context, syncService *service.SyncService, authService *service.AuthService) {
	holders, err := authService.ListCredentialHolders(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error listing credential holders for initial sync")
		return
	}

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	for _, holder := range holders {
		if _, err := syncService.SyncCalendar(ctx, holder, start, end); err != nil {
			slog.With(logging.ErrKey, err, "user_id", holder).Error("initial calendar sync failed")
		}
	}
}

// drainNATS flushes pending messages and waits for the connection to close.
func drainNATS(natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup) {
	if err := natsConn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		return
	}
	gracefulCloseWG.Wait()
}
