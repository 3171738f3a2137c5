// internal/providers/openaicompat_test.go
package providers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/providers/testutil"
)

func TestOpenAICompatCall(t *testing.T) {
	mock := testutil.NewMockChatServer("Groq says hello")
	defer mock.Close()

	adapter := newOpenAICompatAdapter(ProviderGroq, mock.Server.URL, "")
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "say hello",
		Model:  "llama-3.3-70b",
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text != "Groq says hello" {
		t.Errorf("expected mock response text, got %q", resp.Text)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 34 {
		t.Errorf("expected usage 12/34, got %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if mock.LastAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", mock.LastAuth)
	}
	if mock.LastBody["model"] != "llama-3.3-70b" {
		t.Errorf("expected model in request body, got %v", mock.LastBody["model"])
	}
}

func TestOpenAICompatErrorIncludesStatusAndBody(t *testing.T) {
	mock := testutil.NewMockChatServer("")
	defer mock.Close()
	mock.StatusCode = http.StatusTooManyRequests
	mock.ErrorBody = `{"error":{"message":"rate limited"}}`

	adapter := newOpenAICompatAdapter(ProviderMistral, mock.Server.URL, "")
	_, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "hi",
		Model:  "mistral-large",
		APIKey: "test-key",
	})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("expected response body in error, got %q", err.Error())
	}
}

func TestOpenAICompatRequiresAPIKey(t *testing.T) {
	adapter := newOpenAICompatAdapter(ProviderDeepSeek, "https://api.deepseek.com/v1", "")
	_, err := adapter.Call(context.Background(), CallRequest{Prompt: "hi", Model: "deepseek-chat"})
	if err == nil || !strings.Contains(err.Error(), "missing API key") {
		t.Errorf("expected missing-key error, got %v", err)
	}
}

func TestOpenAICompatOllamaAllowsKeyless(t *testing.T) {
	mock := testutil.NewMockChatServer("local model reply")
	defer mock.Close()

	adapter := newOpenAICompatAdapter(ProviderOllama, mock.Server.URL, "")
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "hi",
		Model:  "llama3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "local model reply" {
		t.Errorf("expected mock response text, got %q", resp.Text)
	}
	if mock.LastAuth != "" {
		t.Errorf("expected no auth header for keyless ollama, got %q", mock.LastAuth)
	}
}

func TestOpenAICompatFallbackRequiresBaseURL(t *testing.T) {
	adapter := newOpenAICompatAdapter("", "", "")
	_, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "hi",
		Model:  "whatever",
		APIKey: "key",
	})
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("expected base_url error for fallback adapter, got %v", err)
	}
}

func TestOpenAICompatBaseURLOverride(t *testing.T) {
	mock := testutil.NewMockChatServer("override reply")
	defer mock.Close()

	// Model api_config base_url wins over the registry default
	adapter := newOpenAICompatAdapter(ProviderXAI, "https://api.x.ai/v1", "")
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt:  "hi",
		Model:   "grok-3",
		APIKey:  "key",
		BaseURL: mock.Server.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "override reply" {
		t.Errorf("expected mock response text, got %q", resp.Text)
	}
}
