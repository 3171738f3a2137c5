// internal/providers/dataforseo_test.go
package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/brandlens/brandlens-workflows/internal/providers/testutil"
)

func TestDataForSEOAIOverviewAnswer(t *testing.T) {
	payload := testutil.SERPPayload([]map[string]interface{}{
		{"type": "organic", "title": "Some page", "description": "irrelevant"},
		{"type": "ai_overview", "answer": "Acme is the leading CRM for startups."},
	})
	var gotUser string
	server := testutil.NewMockSERPServer(payload, &gotUser)
	defer server.Close()

	adapter := newDataForSEOAdapter(server.URL)
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "best CRM for startups",
		APIKey: "login@example.com:secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text != "Acme is the leading CRM for startups." {
		t.Errorf("expected AI overview answer, got %q", resp.Text)
	}
	if gotUser != "login@example.com" {
		t.Errorf("expected basic-auth login, got %q", gotUser)
	}
}

func TestDataForSEONestedOverviewText(t *testing.T) {
	payload := testutil.SERPPayload([]map[string]interface{}{
		{"type": "ai_overview", "items": []map[string]interface{}{
			{"type": "ai_overview_element", "text": "First paragraph."},
			{"type": "ai_overview_element", "text": "Second paragraph."},
		}},
	})
	server := testutil.NewMockSERPServer(payload, nil)
	defer server.Close()

	adapter := newDataForSEOAdapter(server.URL)
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "best CRM",
		APIKey: "user:pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Text, "First paragraph.") || !strings.Contains(resp.Text, "Second paragraph.") {
		t.Errorf("expected joined overview elements, got %q", resp.Text)
	}
}

func TestDataForSEOSnippetFallback(t *testing.T) {
	// 20 organic items but only 15 may be harvested
	var items []map[string]interface{}
	for i := 0; i < 20; i++ {
		items = append(items, map[string]interface{}{
			"type":        "organic",
			"title":       "Result",
			"description": "A snippet about CRMs",
		})
	}
	items = append(items, map[string]interface{}{
		"type": "people_also_ask",
		"items": []map[string]interface{}{
			{"title": "What is a CRM?", "description": "A tool for..."},
		},
	})
	server := testutil.NewMockSERPServer(testutil.SERPPayload(items), nil)
	defer server.Close()

	adapter := newDataForSEOAdapter(server.URL)
	resp, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "best CRM",
		APIKey: "user:pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snippets := strings.Split(resp.Text, "\n\n")
	if len(snippets) != serpSnippetLimit {
		t.Errorf("expected %d snippets, got %d", serpSnippetLimit, len(snippets))
	}
}

func TestDataForSEONothingExtractable(t *testing.T) {
	payload := testutil.SERPPayload([]map[string]interface{}{
		{"type": "images"},
		{"type": "video"},
	})
	server := testutil.NewMockSERPServer(payload, nil)
	defer server.Close()

	adapter := newDataForSEOAdapter(server.URL)
	_, err := adapter.Call(context.Background(), CallRequest{
		Prompt: "best CRM",
		APIKey: "user:pass",
	})
	if err == nil {
		t.Fatal("expected error when SERP has no answer and no snippets")
	}
}

func TestSplitCredentials(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		login   string
		pass    string
		wantErr bool
	}{
		{name: "valid pair", apiKey: "user@example.com:s3cret", login: "user@example.com", pass: "s3cret"},
		{name: "password containing colon", apiKey: "user:pa:ss", login: "user", pass: "pa:ss"},
		{name: "empty", apiKey: "", wantErr: true},
		{name: "no separator", apiKey: "justakey", wantErr: true},
		{name: "empty password", apiKey: "user:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login, pass, err := splitCredentials(tt.apiKey)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if login != tt.login || pass != tt.pass {
				t.Errorf("expected %q/%q, got %q/%q", tt.login, tt.pass, login, pass)
			}
		})
	}
}
