// services/citation_check_service_test.go
package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
)

func promptsFor(provider string, n int) []models.Prompt {
	prompts := make([]models.Prompt, n)
	for i := range prompts {
		prompts[i] = models.Prompt{
			PromptID:   uuid.New(),
			AIProvider: provider,
			Text:       fmt.Sprintf("%s question %d", provider, i),
		}
	}
	return prompts
}

func countByProvider(prompts []models.Prompt) map[string]int {
	counts := map[string]int{}
	for _, p := range prompts {
		counts[p.AIProvider]++
	}
	return counts
}

func TestSelectPromptsApportionment(t *testing.T) {
	s := &citationCheckService{}

	// 40/10/5 over cap 25: floors 18/4/2 sum to 24, the spare slot goes to
	// gemini whose fractional part (.545) is largest
	grouped := map[string][]models.Prompt{
		"openai":     promptsFor("openai", 40),
		"gemini":     promptsFor("gemini", 10),
		"perplexity": promptsFor("perplexity", 5),
	}

	selected := s.SelectPrompts(grouped, 25)
	if len(selected) != 25 {
		t.Fatalf("expected exactly 25 prompts, got %d", len(selected))
	}

	counts := countByProvider(selected)
	want := map[string]int{"openai": 18, "gemini": 5, "perplexity": 2}
	for provider, n := range want {
		if counts[provider] != n {
			t.Errorf("provider %s: expected %d, got %d", provider, n, counts[provider])
		}
	}
}

func TestSelectPromptsProportionalityBound(t *testing.T) {
	s := &citationCheckService{}

	distributions := []map[string]int{
		{"a": 100, "b": 1},
		{"a": 26, "b": 26, "c": 26},
		{"a": 13, "b": 7, "c": 31, "d": 2},
		{"a": 30, "b": 30},
	}

	for _, dist := range distributions {
		grouped := map[string][]models.Prompt{}
		total := 0
		for provider, n := range dist {
			grouped[provider] = promptsFor(provider, n)
			total += n
		}

		selected := s.SelectPrompts(grouped, 25)
		if len(selected) != 25 {
			t.Fatalf("distribution %v: expected 25 prompts, got %d", dist, len(selected))
		}

		counts := countByProvider(selected)
		for provider, n := range dist {
			exact := float64(n) / float64(total) * 25
			if diff := math.Abs(float64(counts[provider]) - exact); diff >= 1 {
				t.Errorf("distribution %v provider %s: selected %d vs exact share %.2f (diff %.2f)", dist, provider, counts[provider], exact, diff)
			}
		}
	}
}

func TestSelectPromptsPassThroughUnderCap(t *testing.T) {
	s := &citationCheckService{}
	grouped := map[string][]models.Prompt{
		"anthropic": promptsFor("anthropic", 3),
		"openai":    promptsFor("openai", 4),
	}

	selected := s.SelectPrompts(grouped, 25)
	if len(selected) != 7 {
		t.Fatalf("expected all 7 prompts, got %d", len(selected))
	}

	// Original per-provider order preserved
	idx := 0
	for _, provider := range []string{"anthropic", "openai"} {
		for i, p := range grouped[provider] {
			if selected[idx].PromptID != p.PromptID {
				t.Errorf("provider %s prompt %d out of order", provider, i)
			}
			idx++
		}
	}
}

func TestSelectPromptsEmptyPool(t *testing.T) {
	s := &citationCheckService{}
	if selected := s.SelectPrompts(map[string][]models.Prompt{}, 25); selected != nil {
		t.Errorf("expected nil for empty pool, got %d prompts", len(selected))
	}
}

func TestSelectPromptsKeepsOriginalOrderWithinProvider(t *testing.T) {
	s := &citationCheckService{}
	grouped := map[string][]models.Prompt{
		"openai": promptsFor("openai", 50),
	}

	selected := s.SelectPrompts(grouped, 25)
	if len(selected) != 25 {
		t.Fatalf("expected 25 prompts, got %d", len(selected))
	}
	for i, p := range selected {
		if p.PromptID != grouped["openai"][i].PromptID {
			t.Fatalf("prompt %d was reshuffled", i)
		}
	}
}

func TestCitationAnswerParsing(t *testing.T) {
	raw := "Acme is a popular choice for CRMs, alongside Beta and Gamma.\n\nMentioned: yes\nPosition: 2\nConfidence: 0.85\n"

	if m := mentionedLineRe.FindStringSubmatch(raw); m == nil || m[1] != "yes" {
		t.Errorf("expected mentioned=yes, got %v", m)
	}
	if m := positionLineRe.FindStringSubmatch(raw); m == nil || m[1] != "2" {
		t.Errorf("expected position=2, got %v", m)
	}
	if m := confidenceLineRe.FindStringSubmatch(raw); m == nil || m[1] != "0.85" {
		t.Errorf("expected confidence=0.85, got %v", m)
	}

	excerpt := firstMentionExcerpt(raw, "acme")
	if excerpt == "" {
		t.Error("expected a mention excerpt")
	}
}
