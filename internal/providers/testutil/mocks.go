// internal/providers/testutil/mocks.go
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// MockChatServer mimics an OpenAI-compatible chat completions endpoint
type MockChatServer struct {
	Server       *httptest.Server
	ResponseText string
	StatusCode   int
	ErrorBody    string
	// LastAuth records the Authorization header of the most recent request
	LastAuth string
	// LastBody records the decoded request body of the most recent request
	LastBody map[string]interface{}
}

// NewMockChatServer creates a mock OpenAI-compatible server returning the
// given text
func NewMockChatServer(responseText string) *MockChatServer {
	mock := &MockChatServer{
		ResponseText: responseText,
		StatusCode:   http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		mock.LastAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&mock.LastBody)

		if mock.StatusCode != http.StatusOK {
			w.WriteHeader(mock.StatusCode)
			w.Write([]byte(mock.ErrorBody))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": mock.ResponseText}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 34},
		})
	})

	mock.Server = httptest.NewServer(mux)
	return mock
}

func (m *MockChatServer) Close() {
	m.Server.Close()
}

// NewMockGeminiServer creates a mock generateContent endpoint. The captured
// query key is written to *gotKey on each request.
func NewMockGeminiServer(responseText string, gotKey *string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if gotKey != nil {
			*gotKey = r.URL.Query().Get("key")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": responseText}},
				}},
			},
			"usageMetadata": map[string]int{"promptTokenCount": 5, "candidatesTokenCount": 9},
		})
	})
	return httptest.NewServer(mux)
}

// NewMockSERPServer creates a mock DataForSEO live SERP endpoint serving the
// given raw task payload
func NewMockSERPServer(payload map[string]interface{}, gotUser *string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/serp/google/organic/live/advanced", func(w http.ResponseWriter, r *http.Request) {
		if gotUser != nil {
			user, _, _ := r.BasicAuth()
			*gotUser = user
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})
	return httptest.NewServer(mux)
}

// SERPPayload builds a minimal DataForSEO response envelope around items
func SERPPayload(items []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status_code": 20000,
		"tasks": []map[string]interface{}{
			{"result": []map[string]interface{}{{"items": items}}},
		},
	}
}
