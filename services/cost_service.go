// services/cost_service.go
package services

import "strings"

type costService struct{}

func NewCostService() CostService {
	return &costService{}
}

// Cost per 1M tokens
var costPerToken = map[string]struct{ input, output float64 }{
	"gpt-5":                    {input: 1.25, output: 10.00},
	"gpt-5-mini":               {input: 0.25, output: 2.00},
	"gpt-4.1":                  {input: 3.00, output: 12.00},
	"gpt-4.1-mini":             {input: 0.80, output: 3.20},
	"gpt-4o-mini":              {input: 0.15, output: 0.60},
	"claude-sonnet-4-20250514": {input: 3.00, output: 15.00},
	"gemini-2.0-flash":         {input: 0.10, output: 0.40},
	"llama-3.3-70b-versatile":  {input: 0.59, output: 0.79},
	"mistral-large-latest":     {input: 2.00, output: 6.00},
	"deepseek-chat":            {input: 0.27, output: 1.10},
	"grok-3":                   {input: 3.00, output: 15.00},
	"sonar":                    {input: 1.00, output: 1.00}, // Perplexity Sonar pricing (estimated)
}

// Per-provider defaults when a model id has no explicit entry
var defaultProviderCosts = map[string]struct{ input, output float64 }{
	"openai":     {input: 3.00, output: 12.00},
	"anthropic":  {input: 3.00, output: 15.00},
	"gemini":     {input: 0.10, output: 0.40},
	"perplexity": {input: 1.00, output: 1.00},
	"ollama":     {input: 0.00, output: 0.00}, // local
}

func (s *costService) CalculateCost(provider string, model string, inputTokens int, outputTokens int) float64 {
	modelCosts, exists := costPerToken[model]
	if !exists {
		modelCosts, exists = defaultProviderCosts[strings.ToLower(provider)]
		if !exists {
			// Unknown vendor: assume GPT-4.1 class pricing
			modelCosts = costPerToken["gpt-4.1"]
		}
	}

	inputCost := (float64(inputTokens) / 1_000_000.0) * modelCosts.input
	outputCost := (float64(outputTokens) / 1_000_000.0) * modelCosts.output
	return inputCost + outputCost
}
