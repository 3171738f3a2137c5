// internal/analysis/parser.go
package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentiment values produced by the parser
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ParsedResponse is the best-effort structured view of a raw model response.
// Every field has a documented default; Parse never fails.
type ParsedResponse struct {
	// Answer is the HTML_RESPONSE section, or the entire raw text when the
	// delimiters are missing.
	Answer string
	// Sentiment is positive/neutral/negative; default neutral.
	Sentiment string
	// Position is the self-reported 0-100 prominence; default 0.
	Position int
	// CompetitorMentions is the decoded Competitor_Mentions JSON blob;
	// default empty map.
	CompetitorMentions map[string]interface{}
	// Resources is the structured Resources block plus any URLs harvested
	// from the answer body, deduplicated by exact URL string.
	Resources []Resource
}

var (
	htmlSectionRe     = regexp.MustCompile(`(?s)` + HTMLResponseStart + `(.*?)` + HTMLResponseEnd)
	analysisSectionRe = regexp.MustCompile(`(?s)` + AnalysisStart + `(.*?)` + AnalysisEnd)
	sentimentLineRe   = regexp.MustCompile(`(?i)Brand_Sentiment:\s*(.+)`)
	positionLineRe    = regexp.MustCompile(`(?i)Brand_Position:\s*(\d+)%?`)
)

// Parse extracts the answer and self-reported analysis from raw model output.
// Models do not reliably follow format instructions, so every extraction
// degrades to a sane default instead of erroring.
func Parse(raw string) *ParsedResponse {
	parsed := &ParsedResponse{
		Sentiment:          SentimentNeutral,
		CompetitorMentions: map[string]interface{}{},
	}

	// Answer section; absent delimiters mean the whole response is the answer
	if m := htmlSectionRe.FindStringSubmatch(raw); m != nil {
		parsed.Answer = strings.TrimSpace(m[1])
	} else {
		parsed.Answer = strings.TrimSpace(raw)
	}

	analysisBlock := ""
	if m := analysisSectionRe.FindStringSubmatch(raw); m != nil {
		analysisBlock = m[1]
	}

	if analysisBlock != "" {
		if m := sentimentLineRe.FindStringSubmatch(analysisBlock); m != nil {
			parsed.Sentiment = normalizeSentiment(m[1])
		}
		if m := positionLineRe.FindStringSubmatch(analysisBlock); m != nil {
			if pos, err := strconv.Atoi(m[1]); err == nil {
				parsed.Position = pos
			}
		}
		parsed.CompetitorMentions = parseCompetitorMentions(analysisBlock)
		parsed.Resources = parseResourcesBlock(analysisBlock)
	}

	// Independent of the structured block, harvest bare URLs and href
	// attributes from the answer body
	parsed.Resources = harvestAnswerURLs(parsed.Answer, parsed.Resources)

	return parsed
}

func normalizeSentiment(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, SentimentPositive):
		return SentimentPositive
	case strings.Contains(lower, SentimentNegative):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentScore maps a parsed sentiment onto the stored 0-100 scale
func SentimentScore(sentiment string) int {
	switch sentiment {
	case SentimentPositive:
		return 100
	case SentimentNegative:
		return 0
	default:
		return 50
	}
}

// parseCompetitorMentions finds the {...} blob after Competitor_Mentions: and
// best-effort decodes it. Invalid JSON yields an empty map, never an error.
func parseCompetitorMentions(block string) map[string]interface{} {
	mentions := map[string]interface{}{}

	idx := strings.Index(block, "Competitor_Mentions:")
	if idx < 0 {
		return mentions
	}
	rest := block[idx+len("Competitor_Mentions:"):]

	start := strings.Index(rest, "{")
	end := strings.LastIndex(rest, "}")
	if start < 0 || end <= start {
		return mentions
	}

	if err := json.Unmarshal([]byte(rest[start:end+1]), &mentions); err != nil {
		fmt.Printf("[ResponseParser] Warning: invalid Competitor_Mentions JSON, defaulting to empty: %v\n", err)
		return map[string]interface{}{}
	}
	return mentions
}

// parseResourcesBlock walks the analysis block line by line accumulating
// "- URL:/- Type:/- Title:/- Description:" fields into resources. Resources
// are delimited implicitly by repetition of the URL field, not blank lines.
func parseResourcesBlock(block string) []Resource {
	var resources []Resource
	var current *Resource

	flush := func() {
		if current != nil && current.URL != "" {
			resources = append(resources, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case hasFieldPrefix(line, "URL"):
			flush()
			current = &Resource{URL: fieldValue(line)}
		case hasFieldPrefix(line, "Type"):
			if current != nil {
				current.Type = fieldValue(line)
			}
		case hasFieldPrefix(line, "Title"):
			if current != nil {
				current.Title = fieldValue(line)
			}
		case hasFieldPrefix(line, "Description"):
			if current != nil {
				current.Description = fieldValue(line)
			}
		}
	}
	flush()

	return resources
}

func hasFieldPrefix(line, field string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, strings.ToLower("- "+field+":")) ||
		strings.HasPrefix(lower, strings.ToLower(field+":"))
}

func fieldValue(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}
