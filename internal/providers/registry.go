// internal/providers/registry.go
package providers

import (
	"fmt"
	"strings"
)

// Registry maps provider keys to adapter implementations. Unknown providers
// fall back to the OpenAI-compatible adapter rather than failing outright:
// most chat-completion vendors speak that dialect, so a newly configured
// provider degrades to a reasonable request shape instead of a hard error.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry wires the adapter for each supported provider
func NewRegistry() *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter),
		fallback: newOpenAICompatAdapter("", "", ""),
	}

	for _, adapter := range []Adapter{
		newOpenAIAdapter(),
		newAnthropicAdapter(),
		newGeminiAdapter(""),
		newDataForSEOAdapter(""),
		newOpenAICompatAdapter(ProviderGroq, "https://api.groq.com/openai/v1", ""),
		newOpenAICompatAdapter(ProviderMistral, "https://api.mistral.ai/v1", ""),
		newOpenAICompatAdapter(ProviderDeepSeek, "https://api.deepseek.com/v1", ""),
		newOpenAICompatAdapter(ProviderXAI, "https://api.x.ai/v1", ""),
		newOpenAICompatAdapter(ProviderOpenRouter, "https://openrouter.ai/api/v1", ""),
		newOpenAICompatAdapter(ProviderOllama, "http://localhost:11434/v1", ""),
		newOpenAICompatAdapter(ProviderPerplexity, "https://api.perplexity.ai", ""),
	} {
		r.adapters[adapter.ProviderName()] = adapter
	}

	return r
}

// ForProvider returns the adapter for a provider key. Unknown keys get the
// OpenAI-compatible fallback with a logged warning.
func (r *Registry) ForProvider(name string) Adapter {
	key := strings.ToLower(strings.TrimSpace(name))
	if adapter, ok := r.adapters[key]; ok {
		return adapter
	}
	fmt.Printf("[ProviderRegistry] ⚠️ Unknown provider %q - falling back to OpenAI-compatible adapter\n", name)
	return r.fallback
}

// Providers lists the registered provider keys
func (r *Registry) Providers() []string {
	keys := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		keys = append(keys, k)
	}
	return keys
}
