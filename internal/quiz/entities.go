package quiz

import (
	"regexp"
	"strings"

	"github.com/samvad-hq/samvad-wiki-quiz/internal/domain"
)

const (
	maxPeopleCandidates   = 8
	maxLocationMatches    = 15
	maxLocationCandidates = 8
	maxEntitiesOut        = 5
)

var (
	personPattern   = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
	locationPattern = regexp.MustCompile(`\b(?:the |a )?[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)

	locationStopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "this": {}, "that": {},
		"these": {}, "those": {}, "and": {}, "or": {}, "but": {},
	}
)

// findPeople returns up to eight two-word capitalised names in first-seen order.
func findPeople(text string) []string {
	return head(dedupe(wordMatches(personPattern, text, -1)), maxPeopleCandidates)
}

// findLocations returns up to eight capitalised runs after dropping bare stopwords.
func findLocations(text string) []string {
	matches := head(dedupe(wordMatches(locationPattern, text, -1)), maxLocationMatches)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, stop := locationStopwords[strings.ToLower(m)]; stop {
			continue
		}
		out = append(out, m)
	}
	return head(out, maxLocationCandidates)
}

// extractEntities applies the name heuristics to the full text. Organizations are never detected.
func extractEntities(text string, people []string) domain.EntityBundle {
	bundle := domain.EmptyEntities()
	bundle.People = append(bundle.People, head(people, maxEntitiesOut)...)
	bundle.Locations = append(bundle.Locations, head(findLocations(text), maxEntitiesOut)...)
	return bundle
}
