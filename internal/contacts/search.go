package contacts

import (
	"sort"
	"strings"
)

// Relevance weights for the local search fallback.
const (
	nameMatchScore       = 3.0
	descriptionTermScore = 1.0
	labelMatchScore      = 2.0
)

// Rank scores contacts against a query and returns matches in descending
// relevance order. Scoring: full query as a substring of the name, each
// whitespace token of the query as a substring of the description, and the
// full query as a substring of each assigned label name. Contacts that score
// zero are excluded. Ties keep the input order (stable sort).
func Rank(items []Contact, query string) []Contact {
	full := strings.ToLower(strings.TrimSpace(query))
	if full == "" {
		return nil
	}
	terms := strings.Fields(full)

	type scored struct {
		contact Contact
		score   float64
	}
	matches := make([]scored, 0, len(items))
	for _, contact := range items {
		score := scoreContact(contact, full, terms)
		if score <= 0 {
			continue
		}
		matches = append(matches, scored{contact: contact, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	ranked := make([]Contact, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, m.contact)
	}
	return ranked
}

func scoreContact(contact Contact, full string, terms []string) float64 {
	var score float64
	if contact.Name != "" && strings.Contains(strings.ToLower(contact.Name), full) {
		score += nameMatchScore
	}
	if contact.TextDescription != "" {
		description := strings.ToLower(contact.TextDescription)
		for _, term := range terms {
			if strings.Contains(description, term) {
				score += descriptionTermScore
			}
		}
	}
	for _, label := range contact.Labels {
		if strings.Contains(strings.ToLower(label.Name), full) {
			score += labelMatchScore
		}
	}
	return score
}
