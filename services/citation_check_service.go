// services/citation_check_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brandlens/brandlens-workflows/internal/models"
	"github.com/brandlens/brandlens-workflows/internal/providers"
)

// CitationCheckCap bounds how many prompts one citation check may query
const CitationCheckCap = 25

// citationFreshness is how long a provider's citation result is reused
// before a new check re-queries that provider
const citationFreshness = 24 * time.Hour

type citationCheckService struct {
	repos    *RepositoryManager
	selector ModelSelectorService
}

func NewCitationCheckService(repos *RepositoryManager, selector ModelSelectorService) CitationCheckService {
	return &citationCheckService{
		repos:    repos,
		selector: selector,
	}
}

// SelectPrompts proportionally samples up to cap prompts while preserving
// each provider's relative share. Floor allocation first, then the remaining
// slots go to providers by largest fractional part. If the pool fits under
// the cap everything is returned unchanged.
func (s *citationCheckService) SelectPrompts(grouped map[string][]models.Prompt, cap int) []models.Prompt {
	total := 0
	for _, prompts := range grouped {
		total += len(prompts)
	}
	if total == 0 {
		return nil
	}

	// Stable provider enumeration
	providerKeys := make([]string, 0, len(grouped))
	for provider := range grouped {
		providerKeys = append(providerKeys, provider)
	}
	sort.Strings(providerKeys)

	if total <= cap {
		var all []models.Prompt
		for _, provider := range providerKeys {
			all = append(all, grouped[provider]...)
		}
		return all
	}

	type share struct {
		provider   string
		allocated  int
		fractional float64
	}

	shares := make([]share, 0, len(providerKeys))
	allocatedSum := 0
	for _, provider := range providerKeys {
		exact := float64(len(grouped[provider])) / float64(total) * float64(cap)
		floor := int(math.Floor(exact))
		shares = append(shares, share{
			provider:   provider,
			allocated:  floor,
			fractional: exact - float64(floor),
		})
		allocatedSum += floor
	}

	// Hand out the remainder by largest fractional part
	remainder := cap - allocatedSum
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].fractional > shares[j].fractional
	})
	for i := 0; i < len(shares) && remainder > 0; i++ {
		shares[i].allocated++
		remainder--
	}

	// Restore enumeration order and take each provider's slice head
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].provider < shares[j].provider
	})

	var selected []models.Prompt
	for _, sh := range shares {
		prompts := grouped[sh.provider]
		if sh.allocated > len(prompts) {
			sh.allocated = len(prompts)
		}
		selected = append(selected, prompts[:sh.allocated]...)
	}
	return selected
}

var (
	mentionedLineRe  = regexp.MustCompile(`(?i)Mentioned:\s*(yes|no|true|false)`)
	positionLineRe   = regexp.MustCompile(`(?i)Position:\s*(\d+)`)
	confidenceLineRe = regexp.MustCompile(`(?i)Confidence:\s*(\d+(?:\.\d+)?)`)
)

// CheckPostCitations samples the post's prompt pool proportionally per
// generating provider, then asks every enabled model whether the post's
// brand shows up for those questions. One upserted result per provider.
func (s *citationCheckService) CheckPostCitations(ctx context.Context, postID uuid.UUID, sessionID string) (*CitationCheckResult, error) {
	prompts, err := s.repos.PromptRepo.GetByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(prompts) == 0 {
		fmt.Printf("[CitationCheck] No prompts for post %s - nothing to check\n", postID)
		return &CitationCheckResult{PostID: postID}, nil
	}

	brand, err := s.repos.BrandRepo.GetByID(ctx, prompts[0].BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found for post %s", prompts[0].BrandID, postID)
	}

	grouped := map[string][]models.Prompt{}
	for _, p := range prompts {
		grouped[p.AIProvider] = append(grouped[p.AIProvider], p)
	}

	selected := s.SelectPrompts(grouped, CitationCheckCap)
	fmt.Printf("[CitationCheck] Selected %d of %d prompts for post %s across %d providers\n", len(selected), len(prompts), postID, len(grouped))

	questions := make([]string, 0, len(selected))
	for _, p := range selected {
		questions = append(questions, p.Text)
	}
	combined := strings.Join(questions, "\n")

	enabled, err := s.repos.AIModelRepo.GetEnabled(ctx)
	if err != nil {
		return nil, err
	}

	// Providers checked within the freshness window keep their last result
	recent := map[string]bool{}
	if existing, err := s.repos.PostCitationRepo.GetByPost(ctx, postID); err != nil {
		fmt.Printf("[CitationCheck] ⚠️ Failed to load prior citations for post %s: %v\n", postID, err)
	} else {
		for _, c := range existing {
			if time.Since(c.CheckedAt) < citationFreshness {
				recent[c.AIProvider] = true
			}
		}
	}

	result := &CitationCheckResult{PostID: postID, PromptsSelected: len(selected)}
	for i := range enabled {
		model := &enabled[i]
		if recent[model.Name] {
			fmt.Printf("[CitationCheck] Provider %s checked recently for post %s - keeping prior result\n", model.Name, postID)
			continue
		}
		citation, err := s.checkWithModel(ctx, model, brand, combined)
		if err != nil {
			fmt.Printf("[CitationCheck] ⚠️ Provider %s check failed for post %s: %v\n", model.Name, postID, err)
			continue
		}
		citation.PostID = postID
		if err := s.repos.PostCitationRepo.Upsert(ctx, citation); err != nil {
			return result, err
		}
		result.ProvidersRun++
		if citation.IsMentioned {
			result.Mentioned++
		}
	}

	return result, nil
}

func (s *citationCheckService) checkWithModel(ctx context.Context, model *models.AIModel, brand *models.Brand, combinedQuestions string) (*models.PostCitation, error) {
	prompt := buildCitationCheckPrompt(brand.Name, brand.Website, combinedQuestions)
	call, err := s.selector.CallModel(ctx, model, prompt, providers.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	citation := &models.PostCitation{
		AIProvider: model.Name,
		Metadata: models.JSONMap{
			"input_tokens":  call.InputTokens,
			"output_tokens": call.OutputTokens,
			"cost":          call.Cost,
		},
	}

	if m := mentionedLineRe.FindStringSubmatch(call.Text); m != nil {
		answer := strings.ToLower(m[1])
		citation.IsMentioned = answer == "yes" || answer == "true"
	}
	if m := positionLineRe.FindStringSubmatch(call.Text); m != nil {
		if pos, err := strconv.Atoi(m[1]); err == nil {
			citation.Position = &pos
		}
	}
	if m := confidenceLineRe.FindStringSubmatch(call.Text); m != nil {
		if conf, err := strconv.ParseFloat(m[1], 64); err == nil {
			citation.Confidence = &conf
		}
	}
	if citation.IsMentioned {
		if excerpt := firstMentionExcerpt(call.Text, brand.Name); excerpt != "" {
			citation.CitationText = &excerpt
		}
	}

	return citation, nil
}

func buildCitationCheckPrompt(brandName, website, combinedQuestions string) string {
	var b strings.Builder
	b.WriteString("Answer the following questions the way you normally would, then report whether the brand below shows up in your answers.\n\n")
	fmt.Fprintf(&b, "Brand: %s (%s)\n\nQuestions:\n%s\n\n", brandName, website, combinedQuestions)
	b.WriteString("After your answers, add exactly these three lines:\n")
	b.WriteString("Mentioned: yes or no\n")
	b.WriteString("Position: approximate rank of the brand among alternatives you named, or 0\n")
	b.WriteString("Confidence: 0.0 to 1.0\n")
	return b.String()
}

// firstMentionExcerpt grabs a short window around the brand's first
// occurrence as evidence text
func firstMentionExcerpt(text, brandName string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(brandName))
	if idx < 0 {
		return ""
	}
	start := idx - 80
	if start < 0 {
		start = 0
	}
	end := idx + len(brandName) + 80
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
