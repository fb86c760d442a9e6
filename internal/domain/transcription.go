// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "context"

// TranscriptionResult is the output of the audio transcription engine.
type TranscriptionResult struct {
	Text     string
	Language string
	// Duration of the source audio in seconds, when the engine reports it.
	Duration float64
}

// AudioTranscriber converts recorded audio into text. A nil result with a nil
// error means the engine produced nothing usable for this input; the resolver
// treats that the same as a not-found transcript.
type AudioTranscriber interface {
	TranscribeBytes(ctx context.Context, audio []byte, filename, languageHint string) (*TranscriptionResult, error)
	TranscribeFile(ctx context.Context, path, languageHint string) (*TranscriptionResult, error)
}
