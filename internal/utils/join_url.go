// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package utils contains small pure helpers shared by the resolver: meeting
// join-URL extraction from event bodies and caption-track normalization.
package utils

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// urlPattern matches HTTP and HTTPS URLs: the scheme followed by one or more
// characters that are not whitespace, <, >, or ".
var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// joinURLMarkers identify session-invitation links embedded in event bodies.
// The provider uses a couple of URL shapes depending on client version.
var joinURLMarkers = []string{
	"/l/meetup-join/",
	"/meet/",
}

// ExtractJoinURL finds the first meeting join link embedded in an event body.
// The body may be HTML or plain preview text; HTML is reduced to its anchor
// hrefs and text before matching. Returns "" when no join link is present.
func ExtractJoinURL(body string) string {
	if body == "" {
		return ""
	}

	// Anchor hrefs are the most reliable carrier in HTML bodies.
	if strings.Contains(body, "<") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err == nil {
			var found string
			doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
				href, _ := sel.Attr("href")
				if isJoinURL(href) {
					found = href
					return false
				}
				return true
			})
			if found != "" {
				return found
			}
			// Fall back to scanning the rendered text for bare links.
			body = doc.Text()
		}
	}

	for _, candidate := range extractURLs(body) {
		if isJoinURL(candidate) {
			return candidate
		}
	}
	return ""
}

func isJoinURL(url string) bool {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	for _, marker := range joinURLMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// extractURLs extracts all HTTP/HTTPS URLs from the given text, deduplicated
// in order of appearance.
func extractURLs(text string) []string {
	if text == "" {
		return nil
	}

	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	urls := make([]string, 0, len(matches))
	for _, url := range matches {
		url = cleanTrailingPunctuation(url)
		if seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}
	return urls
}

// cleanTrailingPunctuation removes common trailing punctuation that might be
// captured by the regex but shouldn't be part of the URL (e.g., periods or
// commas at the end of sentences).
func cleanTrailingPunctuation(url string) string {
	trailingChars := []string{".", ",", "!", "?", ";", ":", ")", "]", "}", ">"}

	for {
		trimmed := false
		for _, char := range trailingChars {
			if strings.HasSuffix(url, char) {
				url = strings.TrimSuffix(url, char)
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}
	return url
}
