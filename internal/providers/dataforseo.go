// internal/providers/dataforseo.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// dataForSEOAdapter repurposes the DataForSEO Google "AI Overview" SERP
// endpoint as a model: the prompt is submitted as a search keyword and the
// AI-overview answer (or, failing that, harvested SERP snippets) comes back
// as the response text. Auth is HTTP basic with the configured key split as
// login:password.
type dataForSEOAdapter struct {
	baseURL string
}

const serpSnippetLimit = 15

func newDataForSEOAdapter(baseURL string) Adapter {
	if baseURL == "" {
		baseURL = "https://api.dataforseo.com"
	}
	return &dataForSEOAdapter{baseURL: baseURL}
}

func (a *dataForSEOAdapter) ProviderName() string {
	return ProviderDataForSEO
}

// DataForSEO SERP wire structures (the subset this adapter consumes)
type serpTaskRequest struct {
	Keyword      string `json:"keyword"`
	LocationName string `json:"location_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type serpResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		Result []struct {
			Items []serpItem `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

type serpItem struct {
	Type        string     `json:"type"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Answer      string     `json:"answer,omitempty"`
	Text        string     `json:"text,omitempty"`
	Items       []serpItem `json:"items,omitempty"`
}

func (a *dataForSEOAdapter) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	login, password, err := splitCredentials(req.APIKey)
	if err != nil {
		return nil, err
	}

	baseURL := a.baseURL
	if req.BaseURL != "" {
		baseURL = req.BaseURL
	}

	body := []serpTaskRequest{{
		Keyword:      req.Prompt,
		LocationName: req.extraString("location"),
		LanguageCode: req.extraString("language"),
	}}

	var parsed serpResponse
	client := resty.New().SetTimeout(req.timeout())
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBasicAuth(login, password).
		SetBody(body).
		SetResult(&parsed).
		Post(baseURL + "/v3/serp/google/organic/live/advanced")
	if err != nil {
		return nil, fmt.Errorf("dataforseo: request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("dataforseo: API returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if parsed.StatusCode >= 40000 {
		return nil, fmt.Errorf("dataforseo: task failed with status %d: %s", parsed.StatusCode, parsed.StatusMessage)
	}

	items := flattenSERPItems(parsed)

	// Canonical path: the ai_overview answer text
	if answer := aiOverviewAnswer(items); answer != "" {
		return &CallResponse{Text: answer}, nil
	}

	// Fallback: concatenate up to 15 snippets from organic results,
	// "Found on Web" blocks and People-Also-Ask items
	if snippets := harvestSnippets(items); len(snippets) > 0 {
		fmt.Printf("[DataForSEOAdapter] ⚠️ Empty ai_overview answer - falling back to %d SERP snippets\n", len(snippets))
		return &CallResponse{Text: strings.Join(snippets, "\n\n")}, nil
	}

	return nil, fmt.Errorf("dataforseo: no AI overview answer and no extractable snippets in SERP response")
}

// splitCredentials splits the configured key into the basic-auth
// login:password pair DataForSEO expects
func splitCredentials(apiKey string) (string, string, error) {
	if apiKey == "" {
		return "", "", fmt.Errorf("dataforseo: missing API credentials")
	}
	parts := strings.SplitN(apiKey, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("dataforseo: credentials must be in login:password format")
	}
	return parts[0], parts[1], nil
}

func flattenSERPItems(parsed serpResponse) []serpItem {
	var items []serpItem
	for _, task := range parsed.Tasks {
		for _, result := range task.Result {
			items = append(items, result.Items...)
		}
	}
	return items
}

func aiOverviewAnswer(items []serpItem) string {
	for _, item := range items {
		if item.Type != "ai_overview" {
			continue
		}
		if item.Answer != "" {
			return item.Answer
		}
		// Some payloads carry the overview as nested text elements
		var parts []string
		for _, sub := range item.Items {
			if sub.Text != "" {
				parts = append(parts, sub.Text)
			}
		}
		if joined := strings.TrimSpace(strings.Join(parts, "\n")); joined != "" {
			return joined
		}
	}
	return ""
}

func harvestSnippets(items []serpItem) []string {
	var snippets []string

	add := func(title, description string) {
		if len(snippets) >= serpSnippetLimit {
			return
		}
		text := strings.TrimSpace(title)
		if description != "" {
			if text != "" {
				text += ": "
			}
			text += strings.TrimSpace(description)
		}
		if text != "" {
			snippets = append(snippets, text)
		}
	}

	for _, item := range items {
		switch item.Type {
		case "organic", "found_on_web":
			add(item.Title, item.Description)
		case "people_also_ask":
			for _, sub := range item.Items {
				add(sub.Title, sub.Description)
			}
		}
		if len(snippets) >= serpSnippetLimit {
			break
		}
	}

	return snippets
}
