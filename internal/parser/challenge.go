package parser

import "strings"

// Challenge markers served by anti-automation interstitials. Matching is
// case-insensitive substring only; challenges persist across pages, so the
// caller stops the run on the first hit.
var (
	htmlChallengeMarkers  = []string{"just a moment", "cf-challenge"}
	titleChallengeMarkers = []string{"just a moment", "challenge"}
)

// LooksLikeChallenge reports whether rendered HTML or its title is an
// anti-bot challenge page rather than real content.
func LooksLikeChallenge(html, title string) bool {
	h := strings.ToLower(html)
	for _, marker := range htmlChallengeMarkers {
		if strings.Contains(h, marker) {
			return true
		}
	}
	t := strings.ToLower(title)
	for _, marker := range titleChallengeMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
