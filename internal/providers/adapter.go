// internal/providers/adapter.go
package providers

import (
	"context"
	"time"
)

// Provider keys as stored in ai_models.name
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderGroq       = "groq"
	ProviderMistral    = "mistral"
	ProviderDeepSeek   = "deepseek"
	ProviderXAI        = "xai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderPerplexity = "perplexity"
	ProviderDataForSEO = "dataforseo"
)

// Default per-call timeouts. Health checks use the short timeout; full
// analysis calls carry large prompts and get the long one.
const (
	DefaultTimeout     = 60 * time.Second
	HealthCheckTimeout = 30 * time.Second
	AnalysisTimeout    = 120 * time.Second
)

// CallRequest is the canonical request every adapter maps onto its vendor's
// wire shape
type CallRequest struct {
	Prompt      string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	BaseURL     string
	Timeout     time.Duration
	// Extra carries vendor-specific knobs from ai_models.api_config
	// (location/language for search-style providers)
	Extra map[string]interface{}
}

// CallResponse is the canonical response: the generated text plus token usage
// where the vendor reports it
type CallResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Adapter maps the canonical prompt contract onto one vendor's HTTP API
type Adapter interface {
	ProviderName() string
	Call(ctx context.Context, req CallRequest) (*CallResponse, error)
}

func (r CallRequest) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

func (r CallRequest) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return 2000
}

func (r CallRequest) extraString(key string) string {
	if r.Extra == nil {
		return ""
	}
	if v, ok := r.Extra[key].(string); ok {
		return v
	}
	return ""
}
