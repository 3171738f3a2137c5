// internal/providers/openai.go
package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openaiAdapter calls the OpenAI chat completions API through the official
// SDK. The API key comes per-call from the model's api_config, so the client
// is built per request.
type openaiAdapter struct{}

func newOpenAIAdapter() Adapter {
	return &openaiAdapter{}
}

func (a *openaiAdapter) ProviderName() string {
	return ProviderOpenAI
}

func (a *openaiAdapter) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	if !strings.HasPrefix(req.APIKey, "sk-") {
		return nil, fmt.Errorf("openai: invalid API key format (must start with sk-)")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: req.timeout()}),
	}
	if req.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(req.BaseURL))
	}
	client := openai.NewClient(opts...)

	response, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model:       openai.ChatModel(req.Model),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.maxTokens())),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}

	return &CallResponse{
		Text:         response.Choices[0].Message.Content,
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
	}, nil
}
