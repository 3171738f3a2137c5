// internal/providers/registry_test.go
package providers

import "testing"

func TestRegistryKnownProviders(t *testing.T) {
	registry := NewRegistry()

	known := []string{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderGemini,
		ProviderGroq,
		ProviderMistral,
		ProviderDeepSeek,
		ProviderXAI,
		ProviderOpenRouter,
		ProviderOllama,
		ProviderPerplexity,
		ProviderDataForSEO,
	}

	for _, name := range known {
		t.Run(name, func(t *testing.T) {
			adapter := registry.ForProvider(name)
			if adapter.ProviderName() != name {
				t.Errorf("expected adapter for %q, got %q", name, adapter.ProviderName())
			}
		})
	}

	if len(registry.Providers()) != len(known) {
		t.Errorf("expected %d registered providers, got %d", len(known), len(registry.Providers()))
	}
}

func TestRegistryNormalizesProviderKey(t *testing.T) {
	registry := NewRegistry()

	adapter := registry.ForProvider("  OpenAI ")
	if adapter.ProviderName() != ProviderOpenAI {
		t.Errorf("expected openai adapter, got %q", adapter.ProviderName())
	}
}

func TestRegistryUnknownProviderFallsBack(t *testing.T) {
	registry := NewRegistry()

	adapter := registry.ForProvider("some-new-vendor")
	if adapter == nil {
		t.Fatal("expected fallback adapter, got nil")
	}
	if adapter.ProviderName() != "" {
		t.Errorf("expected generic fallback adapter, got %q", adapter.ProviderName())
	}
}
