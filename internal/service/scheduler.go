// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-minutes-service/internal/logging"
)

// Scheduler timing defaults.
const (
	// DefaultScheduleInterval is the sleep between scheduler cycles.
	DefaultScheduleInterval = 30 * time.Minute
	// DefaultCycleTimeout bounds a full cycle across all credential holders.
	DefaultCycleTimeout = 300 * time.Second
	// DefaultMeetingTimeout bounds the work for a single meeting so one slow
	// resolution cannot starve the rest of the batch.
	DefaultMeetingTimeout = 120 * time.Second
	// DefaultRecencyWindow selects meetings that started within this window.
	DefaultRecencyWindow = 24 * time.Hour
)

// SchedulerConfig carries the scheduler's timing knobs. Zero values fall back
// to the package defaults.
type SchedulerConfig struct {
	Interval       time.Duration
	CycleTimeout   time.Duration
	MeetingTimeout time.Duration
	RecencyWindow  time.Duration
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultScheduleInterval
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = DefaultCycleTimeout
	}
	if c.MeetingTimeout <= 0 {
		c.MeetingTimeout = DefaultMeetingTimeout
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = DefaultRecencyWindow
	}
	return c
}

// TranscriptScheduler periodically sweeps recent meeting records that still
// miss a transcript and tries to resolve one for each. Cycles are idempotent:
// a record that gained a usable transcript is never reprocessed.
type TranscriptScheduler struct {
	MeetingRepository domain.MeetingRepository
	MinutesRepository domain.MinutesRepository
	TokenProvider     domain.TokenProvider
	Resolver          *ResolverService
	Generator         domain.MinutesGenerator
	TaskAssigner      *TaskService
	Publisher         domain.MessagePublisher
	Config            SchedulerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	now     func() time.Time
}

// NewTranscriptScheduler creates a new TranscriptScheduler. Generator,
// TaskAssigner, and Publisher may be nil; those steps are skipped.
func NewTranscriptScheduler(
	meetingRepository domain.MeetingRepository,
	minutesRepository domain.MinutesRepository,
	tokenProvider domain.TokenProvider,
	resolver *ResolverService,
	generator domain.MinutesGenerator,
	taskAssigner *TaskService,
	publisher domain.MessagePublisher,
	config SchedulerConfig,
) *TranscriptScheduler {
	return &TranscriptScheduler{
		MeetingRepository: meetingRepository,
		MinutesRepository: minutesRepository,
		TokenProvider:     tokenProvider,
		Resolver:          resolver,
		Generator:         generator,
		TaskAssigner:      taskAssigner,
		Publisher:         publisher,
		Config:            config.withDefaults(),
		now:               time.Now,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *TranscriptScheduler) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.TokenProvider != nil &&
		s.Resolver != nil
}

// Running reports whether the background loop is active.
func (s *TranscriptScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start launches the background loop. Starting an already running scheduler
// is a no-op.
func (s *TranscriptScheduler) Start(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.WarnContext(ctx, "transcript scheduler already running")
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	slog.InfoContext(ctx, "transcript scheduler started",
		"interval", s.Config.Interval.String(),
		"recency_window", s.Config.RecencyWindow.String(),
	)
	go s.loop(loopCtx, s.done)
	return nil
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish.
func (s *TranscriptScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	slog.Info("transcript scheduler stopped")
}

func (s *TranscriptScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.RunCycle(ctx)

		if ctx.Err() != nil {
			return
		}
		timer.Reset(s.Config.Interval)
	}
}

// RunCycle executes one sweep: select candidate records, obtain a token per
// credential holder, and process each assigned meeting sequentially. It is
// safe to call directly, which the tests and the manual trigger rely on.
func (s *TranscriptScheduler) RunCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.Config.CycleTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.Config.RecencyWindow)
	candidates, err := s.MeetingRepository.ListMissingTranscripts(cycleCtx, cutoff)
	if err != nil {
		slog.ErrorContext(cycleCtx, "listing candidate meetings failed", logging.ErrKey, err)
		return
	}
	if len(candidates) == 0 {
		slog.DebugContext(cycleCtx, "no meetings pending transcript resolution")
		return
	}

	holders, err := s.TokenProvider.ListCredentialHolders(cycleCtx)
	if err != nil {
		slog.ErrorContext(cycleCtx, "listing credential holders failed", logging.ErrKey, err)
		return
	}
	if len(holders) == 0 {
		slog.WarnContext(cycleCtx, "no credential holders registered, skipping cycle",
			"candidates", len(candidates),
		)
		return
	}

	slog.InfoContext(cycleCtx, "transcript cycle starting",
		"candidates", len(candidates),
		"credential_holders", len(holders),
	)

	for holder, batch := range s.partition(candidates, holders) {
		if cycleCtx.Err() != nil {
			slog.WarnContext(cycleCtx, "cycle deadline reached, deferring remaining holders")
			return
		}
		s.processBatch(cycleCtx, holder, batch)
	}
}

// partition assigns candidate meetings to credential holders. Records do not
// track which holder organized them, so every candidate goes to the first
// registered holder; the per-holder map shape keeps the call sites unchanged
// once an ownership signal exists.
func (s *TranscriptScheduler) partition(candidates []*models.MeetingRecord, holders []string) map[string][]*models.MeetingRecord {
	return map[string][]*models.MeetingRecord{
		holders[0]: candidates,
	}
}

// processBatch resolves transcripts for one holder's meetings sequentially.
// A credential failure aborts the remainder of this batch only.
func (s *TranscriptScheduler) processBatch(ctx context.Context, holder string, batch []*models.MeetingRecord) {
	token, err := s.TokenProvider.GetValidAccessToken(ctx, holder)
	if err != nil {
		slog.WarnContext(ctx, "skipping credential holder, no valid token",
			"user_id", holder,
			logging.ErrKey, err,
		)
		return
	}

	resolved := 0
	for _, record := range batch {
		if ctx.Err() != nil {
			return
		}
		ok, err := s.processMeeting(ctx, token, record)
		if domain.IsUnauthenticated(err) {
			slog.WarnContext(ctx, "credential became invalid mid-batch, aborting holder",
				"user_id", holder,
				logging.ErrKey, err,
			)
			return
		}
		if ok {
			resolved++
		}
	}

	slog.InfoContext(ctx, "holder batch finished",
		"user_id", holder,
		"meetings", len(batch),
		"resolved", resolved,
	)
}

// processMeeting resolves and persists one meeting's transcript under its own
// deadline. It returns true when a transcript was stored. Only credential
// failures are returned; everything else is logged and leaves the record
// pending for the next cycle.
func (s *TranscriptScheduler) processMeeting(ctx context.Context, token string, record *models.MeetingRecord) (bool, error) {
	meetingCtx, cancel := context.WithTimeout(ctx, s.Config.MeetingTimeout)
	defer cancel()

	resolution, err := s.Resolver.ResolveTranscript(meetingCtx, token, record.ToEvent())
	if err != nil {
		if domain.IsUnauthenticated(err) {
			return false, err
		}
		slog.ErrorContext(meetingCtx, "transcript resolution failed",
			"meeting_id", record.MeetingID,
			logging.ErrKey, err,
		)
		return false, nil
	}
	if resolution == nil || len(resolution.Text) <= models.MinTranscriptLength {
		if resolution != nil {
			slog.DebugContext(meetingCtx, "transcript too short, leaving record pending",
				"meeting_id", record.MeetingID,
				"length", len(resolution.Text),
			)
		}
		return false, nil
	}

	if err := s.persistTranscript(meetingCtx, record, resolution); err != nil {
		slog.ErrorContext(meetingCtx, "persisting transcript failed",
			"meeting_id", record.MeetingID,
			logging.ErrKey, err,
		)
		return false, nil
	}

	s.publishTranscriptCompleted(meetingCtx, record.MeetingID, resolution)
	s.generateMinutes(meetingCtx, token, record.MeetingID)
	return true, nil
}

// persistTranscript re-reads the record under its current revision and writes
// the resolved transcript. A concurrent writer surfaces as a conflict and the
// next cycle sees the fresh state.
func (s *TranscriptScheduler) persistTranscript(ctx context.Context, record *models.MeetingRecord, resolution *Resolution) error {
	fresh, revision, err := s.MeetingRepository.GetWithRevision(ctx, record.MeetingID)
	if err != nil {
		return err
	}
	if fresh.HasUsableTranscript() {
		slog.DebugContext(ctx, "record already has a transcript, skipping write",
			"meeting_id", record.MeetingID,
		)
		return nil
	}

	fresh.TranscriptText = resolution.Text
	fresh.TranscriptionStatus = models.TranscriptionStatusCompleted
	fresh.TranscriptionMethod = resolution.Method
	if resolution.OnlineMeetingID != "" {
		fresh.OnlineMeetingID = resolution.OnlineMeetingID
	}
	if err := s.MeetingRepository.Update(ctx, fresh, revision); err != nil {
		return err
	}

	slog.InfoContext(ctx, "transcript stored",
		"meeting_id", record.MeetingID,
		"method", string(resolution.Method),
		"length", len(resolution.Text),
	)
	return nil
}

func (s *TranscriptScheduler) publishTranscriptCompleted(ctx context.Context, meetingID string, resolution *Resolution) {
	if s.Publisher == nil {
		return
	}
	event := models.TranscriptCompletedEvent{
		MeetingID:        meetingID,
		Method:           resolution.Method,
		TranscriptLength: len(resolution.Text),
		CompletedAt:      s.now().UTC(),
	}
	if err := s.Publisher.PublishTranscriptCompleted(ctx, event); err != nil {
		slog.WarnContext(ctx, "publishing transcript completed event failed",
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
	}
}

// generateMinutes runs the minutes pipeline for a freshly transcribed record:
// generate, store, flag the record, assign action items, publish. Failures
// here never undo the stored transcript.
func (s *TranscriptScheduler) generateMinutes(ctx context.Context, token, meetingID string) {
	if s.Generator == nil || s.MinutesRepository == nil {
		return
	}

	fresh, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingID)
	if err != nil {
		slog.ErrorContext(ctx, "reloading record for minutes generation failed",
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
		return
	}
	if fresh.MinutesGenerated {
		return
	}

	minutes, err := s.Generator.GenerateMinutes(ctx, fresh)
	if err != nil {
		slog.ErrorContext(ctx, "minutes generation failed",
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
		return
	}

	if err := s.MinutesRepository.Put(ctx, minutes); err != nil {
		slog.ErrorContext(ctx, "storing minutes failed",
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
		return
	}

	fresh.MinutesGenerated = true
	if err := s.MeetingRepository.Update(ctx, fresh, revision); err != nil {
		slog.WarnContext(ctx, "flagging record as minutes generated failed",
			"meeting_id", meetingID,
			logging.ErrKey, err,
		)
	}

	if s.TaskAssigner != nil && len(minutes.ActionItems) > 0 {
		s.TaskAssigner.AssignActionItems(ctx, token, minutes)
	}

	if s.Publisher != nil {
		event := models.MinutesGeneratedEvent{
			MeetingID:       meetingID,
			ActionItemCount: len(minutes.ActionItems),
			Fallback:        minutes.Fallback,
			GeneratedAt:     s.now().UTC(),
		}
		if err := s.Publisher.PublishMinutesGenerated(ctx, event); err != nil {
			slog.WarnContext(ctx, "publishing minutes generated event failed",
				"meeting_id", meetingID,
				logging.ErrKey, err,
			)
		}
	}

	slog.InfoContext(ctx, "minutes generated",
		"meeting_id", meetingID,
		"action_items", len(minutes.ActionItems),
		"fallback", minutes.Fallback,
	)
}
