// internal/providers/gemini.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// geminiAdapter calls the Google Generative Language API. Gemini
// authenticates with the API key as a query-string parameter, not a header.
type geminiAdapter struct {
	baseURL string
}

func newGeminiAdapter(baseURL string) Adapter {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &geminiAdapter{baseURL: baseURL}
}

func (a *geminiAdapter) ProviderName() string {
	return ProviderGemini
}

// Gemini generateContent wire structures
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (a *geminiAdapter) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}

	baseURL := a.baseURL
	if req.BaseURL != "" {
		baseURL = req.BaseURL
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: req.Prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.maxTokens(),
		},
	}

	var parsed geminiResponse
	client := resty.New().SetTimeout(req.timeout())
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", req.APIKey).
		SetBody(body).
		SetResult(&parsed).
		Post(fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, req.Model))
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gemini: API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}

	var textParts []string
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			textParts = append(textParts, part.Text)
		}
	}
	text := strings.Join(textParts, "")
	if text == "" {
		return nil, fmt.Errorf("gemini: empty candidate content")
	}

	return &CallResponse{
		Text:         text,
		InputTokens:  parsed.UsageMetadata.PromptTokenCount,
		OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
	}, nil
}
