// internal/analysis/mentions.go
package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/google/uuid"
)

// SearchEntity is one brand or competitor to scan an answer for
type SearchEntity struct {
	EntityType   string
	Name         string
	Aliases      []string
	Domain       string
	CompetitorID *uuid.UUID
}

const contextWindow = 100

// ExtractMentions scans an AI answer for each entity's name variants and
// domain, case-insensitive. Name variants are counted and the first match's
// offset recorded; the domain is consulted only as a fallback when no name
// variant hits at all - a domain hit on top of a name hit is not unioned in.
// Offsets are byte offsets into the original answer.
func ExtractMentions(answer string, entities []SearchEntity) []models.MentionEvent {
	var events []models.MentionEvent
	for _, entity := range entities {
		terms := make([]string, 0, len(entity.Aliases)+1)
		if t := strings.TrimSpace(entity.Name); t != "" {
			terms = append(terms, t)
		}
		for _, alias := range entity.Aliases {
			if t := strings.TrimSpace(alias); t != "" {
				terms = append(terms, t)
			}
		}

		count, first := countOccurrences(answer, terms)

		if count == 0 {
			domain := strings.TrimSpace(entity.Domain)
			if domain != "" {
				count, first = countOccurrences(answer, []string{domain})
			}
		}

		if count == 0 {
			continue
		}

		events = append(events, models.MentionEvent{
			EntityType:   entity.EntityType,
			EntityName:   entity.Name,
			EntityDomain: entity.Domain,
			CompetitorID: entity.CompetitorID,
			MentionCount: count,
			Position:     first,
			Context:      contextAround(answer, first),
		})
	}

	return events
}

// countOccurrences sums case-insensitive occurrences of all terms and returns
// the earliest match's byte offset. Matching runs against the original text so
// offsets stay valid even for runes whose lowercase form changes byte length.
func countOccurrences(text string, terms []string) (int, int) {
	total := 0
	first := -1
	for _, term := range terms {
		if term == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(term))
		if err != nil {
			continue
		}
		matches := re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		total += len(matches)
		if first < 0 || matches[0][0] < first {
			first = matches[0][0]
		}
	}
	if total == 0 {
		return 0, 0
	}
	return total, first
}

// contextAround returns a sanitized snippet of up to contextWindow bytes on
// each side of the match offset, widened to rune boundaries
func contextAround(text string, offset int) string {
	start := offset - contextWindow
	if start < 0 {
		start = 0
	}
	end := offset + contextWindow
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return sanitizeText(text[start:end])
}

// sanitizeText strips control characters so snippets are safe to persist
func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
