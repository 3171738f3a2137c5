package analysis_test

import (
	"strings"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/analysis"
)

func TestParseWellFormedResponse(t *testing.T) {
	raw := `HTML_RESPONSE_START
<p>Acme is a leading CRM vendor. See <a href="https://acme.com/pricing">pricing</a>.</p>
HTML_RESPONSE_END
ANALYSIS_START
Resources:
- URL: https://acme.com/pricing
- Type: competitor_website
- Title: Acme Pricing
- Description: Official pricing page
- URL: https://news.example.com/crm-market
- Type: news_article
- Title: CRM Market Report
- Description: Industry coverage
Brand_Sentiment: positive
Brand_Position: 85%
Competitor_Mentions: {"Globex": {"count": 2, "sentiment": "neutral"}}
ANALYSIS_END`

	parsed := analysis.Parse(raw)

	if !strings.Contains(parsed.Answer, "Acme is a leading CRM vendor") {
		t.Errorf("Answer not extracted, got: %s", parsed.Answer)
	}
	if strings.Contains(parsed.Answer, "ANALYSIS_START") {
		t.Errorf("Answer should not contain the analysis block")
	}
	if parsed.Sentiment != analysis.SentimentPositive {
		t.Errorf("Sentiment = %s, want positive", parsed.Sentiment)
	}
	if parsed.Position != 85 {
		t.Errorf("Position = %d, want 85", parsed.Position)
	}
	if len(parsed.CompetitorMentions) != 1 {
		t.Errorf("CompetitorMentions = %v, want 1 entry", parsed.CompetitorMentions)
	}
	if len(parsed.Resources) != 2 {
		t.Fatalf("Resources = %d, want 2", len(parsed.Resources))
	}
	if parsed.Resources[0].URL != "https://acme.com/pricing" || parsed.Resources[0].Title != "Acme Pricing" {
		t.Errorf("First resource wrong: %+v", parsed.Resources[0])
	}
}

func TestParseMissingAnalysisBlockDefaults(t *testing.T) {
	raw := "Acme is a great product that many teams rely on every day."

	parsed := analysis.Parse(raw)

	if parsed.Answer != raw {
		t.Errorf("Answer should be the full raw text, got: %s", parsed.Answer)
	}
	if parsed.Sentiment != analysis.SentimentNeutral {
		t.Errorf("Sentiment = %s, want neutral default", parsed.Sentiment)
	}
	if parsed.Position != 0 {
		t.Errorf("Position = %d, want 0 default", parsed.Position)
	}
	if len(parsed.CompetitorMentions) != 0 {
		t.Errorf("CompetitorMentions = %v, want empty default", parsed.CompetitorMentions)
	}
}

func TestParseSentimentVariants(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		sentiment string
	}{
		{"plain positive", "Brand_Sentiment: positive", analysis.SentimentPositive},
		{"decorated positive", "Brand_Sentiment: Mostly Positive overall", analysis.SentimentPositive},
		{"negative", "Brand_Sentiment: negative", analysis.SentimentNegative},
		{"neutral", "Brand_Sentiment: neutral", analysis.SentimentNeutral},
		{"garbage defaults neutral", "Brand_Sentiment: enthusiastic", analysis.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "answer\nANALYSIS_START\n" + tt.line + "\nANALYSIS_END"
			parsed := analysis.Parse(raw)
			if parsed.Sentiment != tt.sentiment {
				t.Errorf("Sentiment = %s, want %s", parsed.Sentiment, tt.sentiment)
			}
		})
	}
}

func TestParseInvalidCompetitorMentionsJSON(t *testing.T) {
	raw := `answer
ANALYSIS_START
Brand_Sentiment: neutral
Competitor_Mentions: {not valid json at all
ANALYSIS_END`

	parsed := analysis.Parse(raw)

	if len(parsed.CompetitorMentions) != 0 {
		t.Errorf("Invalid JSON must default to empty map, got %v", parsed.CompetitorMentions)
	}
}

func TestParseResourceDedupAcrossBlockAndBody(t *testing.T) {
	// Same URL in both the structured block and the HTML body must yield
	// exactly one resource entry
	raw := `HTML_RESPONSE_START
<p>Compare options at <a href="https://reviews.example.com/crm">this review</a> and https://other.example.org/post</p>
HTML_RESPONSE_END
ANALYSIS_START
Resources:
- URL: https://reviews.example.com/crm
- Type: review_site
- Title: CRM Reviews
- Description: Comparison article
Brand_Sentiment: neutral
Brand_Position: 10
Competitor_Mentions: {}
ANALYSIS_END`

	parsed := analysis.Parse(raw)

	counts := map[string]int{}
	for _, r := range parsed.Resources {
		counts[r.URL]++
	}
	if counts["https://reviews.example.com/crm"] != 1 {
		t.Errorf("duplicate URL rows: %v", counts)
	}
	if counts["https://other.example.org/post"] != 1 {
		t.Errorf("bare URL from body not harvested: %v", counts)
	}
	for _, r := range parsed.Resources {
		if r.URL == "https://other.example.org/post" && r.Type != "other" {
			t.Errorf("harvested URL type = %s, want other", r.Type)
		}
	}
}

func TestParseResourcesImplicitDelimiting(t *testing.T) {
	// A new URL line flushes the previous resource even without blank lines
	raw := `answer
ANALYSIS_START
Resources:
- URL: https://a.example.com
- Title: First
- URL: https://b.example.com
- Type: blog_post
ANALYSIS_END`

	parsed := analysis.Parse(raw)

	if len(parsed.Resources) != 2 {
		t.Fatalf("Resources = %d, want 2", len(parsed.Resources))
	}
	if parsed.Resources[0].Title != "First" {
		t.Errorf("first resource title = %q", parsed.Resources[0].Title)
	}
	if parsed.Resources[1].Type != "blog_post" {
		t.Errorf("second resource type = %q", parsed.Resources[1].Type)
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		sentiment string
		score     int
	}{
		{analysis.SentimentPositive, 100},
		{analysis.SentimentNeutral, 50},
		{analysis.SentimentNegative, 0},
		{"unknown", 50},
	}

	for _, tt := range tests {
		if got := analysis.SentimentScore(tt.sentiment); got != tt.score {
			t.Errorf("SentimentScore(%s) = %d, want %d", tt.sentiment, got, tt.score)
		}
	}
}
