// internal/providers/openaicompat.go
package providers

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// openaiCompatAdapter speaks the OpenAI chat-completions dialect over raw
// HTTP with bearer auth. It backs groq, mistral, deepseek, xai, openrouter,
// ollama and perplexity (which all expose OpenAI-compatible endpoints), and
// doubles as the fallback for unknown providers.
type openaiCompatAdapter struct {
	provider string
	baseURL  string
	path     string
}

// newOpenAICompatAdapter builds an adapter for one OpenAI-compatible vendor.
// An empty provider name produces the generic fallback adapter, which
// requires base_url from the model's api_config.
func newOpenAICompatAdapter(provider, baseURL, path string) Adapter {
	if path == "" {
		path = "/chat/completions"
	}
	return &openaiCompatAdapter{
		provider: provider,
		baseURL:  baseURL,
		path:     path,
	}
}

func (a *openaiCompatAdapter) ProviderName() string {
	return a.provider
}

// OpenAI-compatible wire structures
type compatChatRequest struct {
	Model       string              `json:"model"`
	Messages    []compatChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type compatChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type compatChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *openaiCompatAdapter) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	name := a.provider
	if name == "" {
		name = "openai-compatible"
	}

	baseURL := a.baseURL
	if req.BaseURL != "" {
		baseURL = req.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("%s: no base_url configured", name)
	}
	// Ollama runs keyless by default; every hosted vendor needs a key
	if req.APIKey == "" && a.provider != ProviderOllama {
		return nil, fmt.Errorf("%s: missing API key", name)
	}

	body := compatChatRequest{
		Model: req.Model,
		Messages: []compatChatMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.maxTokens(),
	}

	client := resty.New().SetTimeout(req.timeout())
	request := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	if req.APIKey != "" {
		request.SetHeader("Authorization", "Bearer "+req.APIKey)
	}

	var parsed compatChatResponse
	resp, err := request.SetResult(&parsed).Post(baseURL + a.path)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: API returned status %d: %s", name, resp.StatusCode(), resp.String())
	}

	if len(parsed.Choices) == 0 {
		if parsed.Error != nil {
			return nil, fmt.Errorf("%s: API error: %s", name, parsed.Error.Message)
		}
		return nil, fmt.Errorf("%s: no response choices returned", name)
	}

	return &CallResponse{
		Text:         parsed.Choices[0].Message.Content,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}
