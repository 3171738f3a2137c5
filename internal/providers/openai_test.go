// internal/providers/openai_test.go
package providers

import (
	"context"
	"strings"
	"testing"
)

func TestOpenAIKeyValidation(t *testing.T) {
	adapter := newOpenAIAdapter()

	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{name: "empty key", apiKey: "", want: "missing API key"},
		{name: "wrong prefix", apiKey: "key-abc123", want: "invalid API key format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := adapter.Call(context.Background(), CallRequest{
				Prompt: "hi",
				Model:  "gpt-4o-mini",
				APIKey: tt.apiKey,
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
