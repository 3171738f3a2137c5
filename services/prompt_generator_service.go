// services/prompt_generator_service.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers"
)

// DefaultPromptCount is how many questions one generation run requests
const DefaultPromptCount = 10

type promptGeneratorService struct {
	repos    *RepositoryManager
	selector ModelSelectorService
}

func NewPromptGeneratorService(repos *RepositoryManager, selector ModelSelectorService) PromptGeneratorService {
	return &promptGeneratorService{
		repos:    repos,
		selector: selector,
	}
}

// numberedPrefixRe strips "1. " / "2) " style list prefixes
var numberedPrefixRe = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// interrogativeWords gate the heuristic question filter alongside "contains ?"
var interrogativeWords = []string{
	"what", "how", "why", "when", "where", "which", "who",
	"can", "is", "are", "do", "does", "will", "would", "should",
}

// fallbackTemplates guarantee callers always get some prompts when
// generation fails outright. %s is the subject name.
var fallbackTemplates = []string{
	"What is %s and what does it offer?",
	"Is %s a good choice compared to its competitors?",
	"What are the main alternatives to %s?",
	"How much does %s cost?",
	"What do customers say about %s?",
	"Which companies compete with %s?",
	"Is %s worth it?",
	"What are the pros and cons of %s?",
	"How does %s compare to other options in its market?",
	"Who should use %s?",
}

// GeneratePrompts runs one full generation pass for a brand or one of its
// posts: deactivate old AI suggestions when replacing, generate questions,
// persist them as active prompts with their analysis rows. A non-nil postID
// scopes everything to that post and anchors the questions to its topic.
func (s *promptGeneratorService) GeneratePrompts(ctx context.Context, brandID uuid.UUID, postID *uuid.UUID, sessionID, description string, replaceExisting bool) (*GeneratePromptsResult, error) {
	brand, err := s.repos.BrandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}

	var post *models.Post
	if postID != nil {
		post, err = s.repos.PostRepo.GetByID(ctx, *postID)
		if err != nil {
			return nil, fmt.Errorf("failed to load post: %w", err)
		}
		if post == nil {
			return nil, fmt.Errorf("post %s not found", *postID)
		}
		if post.BrandID != brandID {
			return nil, fmt.Errorf("post %s does not belong to brand %s", *postID, brandID)
		}
	}

	result := &GeneratePromptsResult{BrandID: brandID, PostID: postID}

	if replaceExisting {
		for _, source := range []string{models.PromptSourceAI, models.PromptSourceFallback} {
			var n int64
			if post != nil {
				n, err = s.repos.PromptRepo.DeactivateByPost(ctx, post.PostID, source)
			} else {
				n, err = s.repos.PromptRepo.DeactivateByBrand(ctx, brandID, source)
			}
			if err != nil {
				return nil, err
			}
			result.Deactivated += int(n)
		}
		fmt.Printf("[PromptGenerator] Deactivated %d existing generated prompts for brand %s\n", result.Deactivated, brand.Name)
	}

	subject := SubjectContext{
		Name:        brand.Name,
		Website:     brand.Website,
		Description: description,
	}
	if subject.Description == "" && brand.Description != nil {
		subject.Description = *brand.Description
	}
	if brand.Country != nil {
		subject.Country = *brand.Country
	}
	if post != nil {
		subject.Topic = post.Title
		if subject.Topic == "" {
			subject.Topic = post.URL
		}
		if subject.Description == "" && post.Content != nil {
			subject.Description = excerpt(*post.Content, 400)
		}
	}

	source := models.PromptSourceAI
	provider := ""
	questions, genErr := s.generateWithModel(ctx, subject, DefaultPromptCount, sessionID, &provider)
	if genErr != nil || len(questions) == 0 {
		if genErr != nil {
			fmt.Printf("[PromptGenerator] ⚠️ Generation failed for brand %s: %v - using fallback templates\n", brand.Name, genErr)
		} else {
			fmt.Printf("[PromptGenerator] ⚠️ No valid questions parsed for brand %s - using fallback templates\n", brand.Name)
		}
		questions = s.fallbackQuestions(subject, DefaultPromptCount)
		source = models.PromptSourceFallback
		result.UsedFallback = true
	}
	result.AIProvider = provider

	if !replaceExisting {
		var existing []models.Prompt
		if post != nil {
			existing, err = s.repos.PromptRepo.GetByPost(ctx, post.PostID)
		} else {
			existing, err = s.repos.PromptRepo.GetActiveByBrand(ctx, brandID)
		}
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(existing))
		for _, p := range existing {
			if p.Status != models.PromptStatusActive {
				continue
			}
			seen[strings.ToLower(strings.TrimSpace(p.Text))] = true
		}
		kept := questions[:0]
		for _, q := range questions {
			if seen[strings.ToLower(strings.TrimSpace(q))] {
				continue
			}
			kept = append(kept, q)
		}
		if dropped := len(questions) - len(kept); dropped > 0 {
			fmt.Printf("[PromptGenerator] Skipped %d questions already active for brand %s\n", dropped, brand.Name)
		}
		questions = kept
	}

	for i, text := range questions {
		prompt := &models.Prompt{
			BrandID:    brandID,
			PostID:     postID,
			Text:       text,
			Source:     source,
			AIProvider: provider,
			Order:      i,
			Status:     models.PromptStatusActive,
		}
		if err := s.repos.PromptRepo.Create(ctx, prompt); err != nil {
			return nil, err
		}
		bp := &models.BrandPrompt{
			BrandID:  brandID,
			PromptID: prompt.PromptID,
		}
		if err := s.repos.BrandPromptRepo.Create(ctx, bp); err != nil {
			return nil, err
		}
		result.BrandPromptIDs = append(result.BrandPromptIDs, bp.BrandPromptID)
		result.Created++
	}

	fmt.Printf("[PromptGenerator] ✅ Created %d prompts for brand %s (source: %s)\n", result.Created, brand.Name, source)
	return result, nil
}

// GenerateQuestions asks an LLM for count questions and parses the raw text.
// Each call can yield different questions; this is deliberately
// non-idempotent.
func (s *promptGeneratorService) GenerateQuestions(ctx context.Context, subject SubjectContext, count int) ([]string, error) {
	var provider string
	return s.generateWithModel(ctx, subject, count, "", &provider)
}

func (s *promptGeneratorService) generateWithModel(ctx context.Context, subject SubjectContext, count int, sessionID string, provider *string) ([]string, error) {
	model, err := s.selector.SelectModel(ctx, models.StrategyRoundRobin, sessionID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("prompt generation: %w", ErrNoEnabledModel)
	}
	*provider = model.Name

	result, err := s.selector.CallModel(ctx, model, buildGenerationPrompt(subject, count), providers.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	return ParseQuestionLines(result.Text, count), nil
}

func buildGenerationPrompt(subject SubjectContext, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are researching how real people ask AI assistants about products and companies.\n\n")
	fmt.Fprintf(&b, "Generate exactly %d natural-language questions a potential customer might ask an AI assistant when researching %q", count, subject.Name)
	if subject.Website != "" {
		fmt.Fprintf(&b, " (%s)", subject.Website)
	}
	b.WriteString(" or its market.\n")
	if subject.Topic != "" {
		fmt.Fprintf(&b, "\nAnchor every question to this piece of their content: %s\n", subject.Topic)
	}
	if subject.Description != "" {
		fmt.Fprintf(&b, "\nAbout the company: %s\n", subject.Description)
	}
	if subject.Country != "" {
		fmt.Fprintf(&b, "The company primarily operates in %s.\n", subject.Country)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- One question per line\n")
	b.WriteString("- No numbering, no bullets, no commentary\n")
	b.WriteString("- Mix brand-specific questions with generic category questions where the brand could plausibly be mentioned\n")
	return b.String()
}

// ParseQuestionLines applies the question-filter policy to raw model output:
// split lines, strip numbering, keep lines containing "?" or starting with
// an interrogative word, truncate to count. Lines failing both checks are
// silently discarded.
func ParseQuestionLines(raw string, count int) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = numberedPrefixRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if line == "" {
			continue
		}
		if !looksLikeQuestion(line) {
			continue
		}
		questions = append(questions, line)
		if len(questions) == count {
			break
		}
	}
	return questions
}

func looksLikeQuestion(line string) bool {
	if strings.Contains(line, "?") {
		return true
	}
	lower := strings.ToLower(line)
	for _, word := range interrogativeWords {
		if strings.HasPrefix(lower, word+" ") {
			return true
		}
	}
	return false
}

// excerpt truncates long post content on a rune boundary for the instruction
func excerpt(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}

func (s *promptGeneratorService) fallbackQuestions(subject SubjectContext, count int) []string {
	name := subject.Name
	if name == "" {
		name = subject.Website
	}
	var questions []string
	for _, tmpl := range fallbackTemplates {
		questions = append(questions, fmt.Sprintf(tmpl, name))
		if len(questions) == count {
			break
		}
	}
	return questions
}
