// internal/providers/anthropic.go
package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicAdapter calls the Anthropic Messages API through the official SDK,
// which handles the x-api-key auth header.
type anthropicAdapter struct{}

func newAnthropicAdapter() Adapter {
	return &anthropicAdapter{}
}

func (a *anthropicAdapter) ProviderName() string {
	return ProviderAnthropic
}

func (a *anthropicAdapter) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("anthropic: missing API key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: req.timeout()}),
	}
	if req.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(req.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: req.Prompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.maxTokens()),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: message call failed: %w", err)
	}

	text := extractAnthropicText(*response)
	if text == "" {
		return nil, fmt.Errorf("anthropic: no text content in response")
	}

	return &CallResponse{
		Text:         text,
		InputTokens:  int(response.Usage.InputTokens),
		OutputTokens: int(response.Usage.OutputTokens),
	}, nil
}

func extractAnthropicText(response anthropic.Message) string {
	var textParts []string
	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}
	return strings.Join(textParts, "")
}
