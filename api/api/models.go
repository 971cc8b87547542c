/* models.go
 * This file contain the structs and helper functions that are used by api consumers
 */

package api

import (
	"sort"
	"strings"

	"numerai-bot/api/shared"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions caps the usernames offered when a lookup misses
const maxSuggestions = 3

// UserLookup is the outcome of a user lookup. Summary is set when the user was found, otherwise Suggestions holds
// the closest usernames, possibly none
type UserLookup struct {
	Summary     *shared.UserSummary
	Suggestions []string
}

// Found reports whether the user is on the current leaderboard
func (l *UserLookup) Found() bool {
	return l != nil && l.Summary != nil
}

// SuggestUsernames returns the known usernames closest to username, best match first.
// Preconditions: receives the username that was not found and the usernames to choose from
// Postconditions: returns at most three usernames that either contain the input as a fuzzy subsequence or are
// within two edits of it, ignoring case
func SuggestUsernames(username string, known []string) []string {
	lowerInput := strings.ToLower(username)
	if lowerInput == "" || len(known) == 0 {
		return nil
	}

	lookup := make(map[string]string, len(known))
	var knownLower []string
	for _, name := range known {
		lower := strings.ToLower(name)
		if _, ok := lookup[lower]; ok {
			continue
		}
		lookup[lower] = name
		knownLower = append(knownLower, lower)
	}

	distances := make(map[string]int)
	for _, rank := range fuzzy.RankFind(lowerInput, knownLower) {
		distances[rank.Target] = rank.Distance
	}
	// Typos are not subsequences, so also accept names a couple of edits away
	for _, lower := range knownLower {
		if _, ok := distances[lower]; ok {
			continue
		}
		if d := fuzzy.LevenshteinDistance(lowerInput, lower); d <= 2 {
			distances[lower] = d
		}
	}

	matches := make([]string, 0, len(distances))
	for lower := range distances {
		matches = append(matches, lower)
	}
	sort.Slice(matches, func(i, j int) bool {
		if distances[matches[i]] != distances[matches[j]] {
			return distances[matches[i]] < distances[matches[j]]
		}
		return matches[i] < matches[j]
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	suggestions := make([]string, len(matches))
	for i, lower := range matches {
		suggestions[i] = lookup[lower] // original casing
	}
	return suggestions
}
