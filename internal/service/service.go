// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service contains the application services: transcript resolution,
// the background scheduler, calendar sync, minutes generation, task
// assignment, and analytics.
package service

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the shared configuration for the services.
type ServiceConfig struct {
	// AllowTimeOnlyMatch enables the resolver's last-resort policy of picking
	// the longest-duration time-overlapping meeting when no candidate shares
	// any participant with the event. Tunable policy, not a hard law.
	AllowTimeOnlyMatch bool
	// AudioFirst makes the scheduler try recording download + audio
	// transcription before caption-track retrieval.
	AudioFirst bool
	// TranscriptFormat is the preferred transcript content format.
	TranscriptFormat string
	// PlannerPlanID is the plan action-item tasks are created in. Empty
	// disables planner assignment; items fall back to email.
	PlannerPlanID string
	// PlannerBucketID is the optional bucket within the plan.
	PlannerBucketID string
}
