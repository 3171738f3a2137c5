// internal/analysis/prompt.go
package analysis

import (
	"fmt"
	"strings"
)

// Delimiters the model is instructed to emit. The parser in this package
// tolerates their absence; see Parse.
const (
	HTMLResponseStart = "HTML_RESPONSE_START"
	HTMLResponseEnd   = "HTML_RESPONSE_END"
	AnalysisStart     = "ANALYSIS_START"
	AnalysisEnd       = "ANALYSIS_END"
)

// PromptInput describes the brand context embedded into the analysis prompt
type PromptInput struct {
	Question        string
	BrandName       string
	BrandDomain     string
	CompetitorNames []string
}

// BuildAnalysisPrompt builds the single instruction prompt that asks the model
// to answer the question naturally AND self-report analysis metadata in a
// delimited pseudo-format. One call instead of two: the model grades itself
// alongside the answer, and the parser degrades gracefully when the format is
// not followed.
func BuildAnalysisPrompt(in PromptInput) string {
	competitors := "none known yet"
	if len(in.CompetitorNames) > 0 {
		competitors = strings.Join(in.CompetitorNames, ", ")
	}

	return fmt.Sprintf(`You are answering a real user question. Respond in two sections using the EXACT delimiters below.

Section 1 - your natural answer as clean HTML (paragraphs, lists, links where relevant):
%s
...your answer here...
%s

Section 2 - a structured self-analysis of YOUR OWN answer above:
%s
Resources:
- URL: <each distinct source url you cited or would cite>
- Type: <one of: competitor_website, news_article, blog_post, research_paper, social_media, marketplace, review_site, other>
- Title: <short title>
- Description: <one sentence>
(repeat the four lines for every resource; a new "- URL:" line starts a new resource)
Brand_Sentiment: <positive | neutral | negative - sentiment of your answer toward "%s">
Brand_Position: <0-100 - how prominently "%s" (website %s) features in your answer, 0 if absent>
Competitor_Mentions: <JSON object mapping each mentioned competitor name to {"count": N, "sentiment": "positive|neutral|negative"}; known competitors: %s>
%s

Question: %s`,
		HTMLResponseStart, HTMLResponseEnd,
		AnalysisStart,
		in.BrandName,
		in.BrandName, in.BrandDomain,
		competitors,
		AnalysisEnd,
		in.Question)
}
