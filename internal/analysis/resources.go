// internal/analysis/resources.go
package analysis

import (
	"regexp"
	"strings"
)

// Resource is one citation extracted from a model response
type Resource struct {
	URL             string `json:"url"`
	Type            string `json:"type"`
	Domain          string `json:"domain"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	IsCompetitorURL bool   `json:"is_competitor_url"`
}

// CompetitorRef is the minimal competitor identity used for URL classification
type CompetitorRef struct {
	Name   string
	Domain string
}

var (
	bareURLRe = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
	hrefRe    = regexp.MustCompile(`href="([^"]+)"`)
)

// harvestAnswerURLs scans the answer body for bare https?:// tokens and
// href attributes. Any URL not already present (dedup by exact string match)
// becomes an additional resource with type "other" and empty metadata.
func harvestAnswerURLs(answer string, existing []Resource) []Resource {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.URL] = true
	}

	add := func(url string) {
		url = strings.TrimRight(url, ".,;:!?")
		if url == "" || seen[url] {
			return
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return
		}
		seen[url] = true
		existing = append(existing, Resource{URL: url, Type: "other"})
	}

	for _, url := range bareURLRe.FindAllString(answer, -1) {
		add(url)
	}
	for _, m := range hrefRe.FindAllStringSubmatch(answer, -1) {
		add(m[1])
	}

	return existing
}

// typeSynonyms normalizes the model's self-reported resource type strings
var typeSynonyms = map[string]string{
	"competitor":         "competitor",
	"competitor_website": "competitor",
	"competitor_site":    "competitor",
	"news":               "news",
	"news_article":       "news",
	"news_site":          "news",
	"blog":               "blog",
	"blog_post":          "blog",
	"research":           "research",
	"research_paper":     "research",
	"study":              "research",
	"social":             "social",
	"social_media":       "social",
	"reddit":             "reddit",
	"youtube":            "youtube",
	"marketplace":        "marketplace",
	"review":             "reviews",
	"reviews":            "reviews",
	"review_site":        "reviews",
	"other":              "other",
}

// NormalizeResource fills Domain, resolves Type through the synonym table
// (with reddit/youtube domain overrides), and flags competitor URLs.
func NormalizeResource(r Resource, competitors []CompetitorRef) Resource {
	r.Domain = ExtractDomain(r.URL)

	normalized := strings.TrimSpace(strings.ToLower(r.Type))
	mapped, ok := typeSynonyms[normalized]
	if !ok {
		mapped = "other"
	}

	// Self-reported types are unreliable for social links; classify by
	// domain when the type carries no signal
	if mapped == "other" || strings.HasPrefix(normalized, "social") {
		switch {
		case isRedditDomain(r.Domain):
			mapped = "reddit"
		case isYouTubeDomain(r.Domain):
			mapped = "youtube"
		}
	}
	r.Type = mapped

	r.IsCompetitorURL = MatchesCompetitor(r.Domain, competitors)
	if r.IsCompetitorURL {
		r.Type = "competitor"
	}

	return r
}

func isRedditDomain(domain string) bool {
	return domain == "reddit.com" || domain == "redd.it" ||
		strings.HasSuffix(domain, ".reddit.com") || strings.HasSuffix(domain, ".redd.it")
}

func isYouTubeDomain(domain string) bool {
	return domain == "youtube.com" || domain == "youtu.be" ||
		strings.HasSuffix(domain, ".youtube.com") || strings.HasSuffix(domain, ".youtu.be")
}

// ExtractDomain pulls the bare lowercase host out of a URL or domain string,
// dropping scheme, credentials, port, path and a leading www.
func ExtractDomain(rawURL string) string {
	s := strings.TrimSpace(strings.ToLower(rawURL))
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, "@"); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimPrefix(s, "www.")
	return s
}

// MatchesCompetitor reports whether a resource domain belongs to a known
// competitor. A domain matches on exact equality with the competitor domain,
// or when either string contains the other (both directions), or when the
// competitor name appears inside the domain. The containment check is
// intentionally loose to tolerate subdomains and prefixes; short competitor
// names can therefore produce false positives on unrelated domains.
func MatchesCompetitor(domain string, competitors []CompetitorRef) bool {
	if domain == "" {
		return false
	}
	for _, c := range competitors {
		compDomain := ExtractDomain(c.Domain)
		if compDomain != "" {
			if domain == compDomain ||
				strings.Contains(domain, compDomain) ||
				strings.Contains(compDomain, domain) {
				return true
			}
		}
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" && strings.Contains(domain, name) {
			return true
		}
	}
	return false
}
