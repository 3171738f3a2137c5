// internal/providers/gemini_test.go
package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/providers/testutil"
)

func TestGeminiCall(t *testing.T) {
	var gotKey string
	server := testutil.NewMockGeminiServer("Gemini answer", &gotKey)
	defer server.Close()

	adapter := newGeminiAdapter(server.URL)
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "what is GEO?",
		Model:  "gemini-2.0-flash",
		APIKey: "gemini-test-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text != "Gemini answer" {
		t.Errorf("expected candidate text, got %q", resp.Text)
	}
	if resp.InputTokens != 5 || resp.OutputTokens != 9 {
		t.Errorf("expected usage 5/9, got %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if gotKey != "gemini-test-key" {
		t.Errorf("expected API key in query string, got %q", gotKey)
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	adapter := newGeminiAdapter("")
	_, err := adapter.Call(context.Background(), CallRequest{Prompt: "hi", Model: "gemini-2.0-flash"})
	if err == nil || !strings.Contains(err.Error(), "missing API key") {
		t.Errorf("expected missing-key error, got %v", err)
	}
}
