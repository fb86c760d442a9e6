// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"regexp"
	"strings"
)

var (
	// markupTagPattern matches HTML/VTT voice markup tags such as
	// <v Alice Smith> and </v>.
	markupTagPattern = regexp.MustCompile(`<[^>]+>`)

	// timestampLinePattern matches caption cue timing lines: two timestamps
	// joined by an arrow, e.g. "00:00:01.000 --> 00:00:04.500".
	timestampLinePattern = regexp.MustCompile(`\d+:\d+[:.\d]*\s*-->\s*\d+:\d+`)

	// numericLinePattern matches cue sequence numbers.
	numericLinePattern = regexp.MustCompile(`^\d+$`)
)

// TranscriptToPlainText converts caption-track content (WebVTT, optionally
// with HTML markup) into plain text. It strips markup tags, the WEBVTT header
// line, cue timing lines, cue sequence numbers, and blank lines, then joins
// the remaining lines with single spaces.
//
// The transform is pure and idempotent: plain text passes through unchanged
// apart from whitespace collapsing.
func TranscriptToPlainText(content string) string {
	if content == "" {
		return ""
	}

	text := markupTagPattern.ReplaceAllString(content, " ")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(line), "WEBVTT") {
			continue
		}
		if timestampLinePattern.MatchString(line) {
			continue
		}
		if numericLinePattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}
