package llmprovider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-server/internal/config"
	"chat-server/internal/domain/llm"
	"chat-server/internal/infrastructure/llmprovider"
	"chat-server/internal/utils/platformerrors"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		CompletionAPIURL:      baseURL,
		CompletionAPIKey:      "test-key",
		CompletionModel:       "gpt-3.5-turbo",
		CompletionTimeout:     5 * time.Second,
		CompletionMaxTokens:   1000,
		CompletionTemperature: 0.7,
		CompletionContext:     8192,
		CompletionMaxRetries:  1,
	}
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-3.5-turbo",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	}
}

func TestGenerateReply_ReturnsFirstChoice(t *testing.T) {
	var received llm.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("It is 6."))
	}))
	defer server.Close()

	client := llmprovider.NewClient(testConfig(server.URL))
	reply, err := client.GenerateReply(context.Background(), []llm.ChatMessage{
		{Role: "user", Content: "What is 3+3?"},
	})
	if err != nil {
		t.Fatalf("GenerateReply failed: %v", err)
	}
	if reply != "It is 6." {
		t.Errorf("reply = %q", reply)
	}
	if received.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", received.Model)
	}
	if received.Temperature == nil || *received.Temperature != 0.7 {
		t.Error("temperature not forwarded")
	}
	if received.MaxTokens == nil || *received.MaxTokens != 1000 {
		t.Error("max_tokens not forwarded")
	}
}

func TestGenerateReply_EmptyTranscriptSendsSystemSeed(t *testing.T) {
	var received llm.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("Hello"))
	}))
	defer server.Close()

	client := llmprovider.NewClient(testConfig(server.URL))
	if _, err := client.GenerateReply(context.Background(), nil); err != nil {
		t.Fatalf("GenerateReply failed: %v", err)
	}

	if len(received.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(received.Messages))
	}
	if received.Messages[0] != llm.DefaultSystemSeed {
		t.Errorf("message = %+v, want default system seed", received.Messages[0])
	}
}

func TestGenerateReply_RetriesTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody("recovered"))
	}))
	defer server.Close()

	client := llmprovider.NewClient(testConfig(server.URL))
	reply, err := client.GenerateReply(context.Background(), []llm.ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("GenerateReply failed: %v", err)
	}
	if reply != "recovered" {
		t.Errorf("reply = %q", reply)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGenerateReply_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer server.Close()

	client := llmprovider.NewClient(testConfig(server.URL))
	_, err := client.GenerateReply(context.Background(), []llm.ChatMessage{{Role: "user", Content: "hi"}})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeGeneration) {
		t.Fatalf("err = %v, want generation error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (4xx is permanent)", calls)
	}
}

func TestGenerateReply_EmptyChoicesIsGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "chatcmpl-1", "choices": []any{}})
	}))
	defer server.Close()

	client := llmprovider.NewClient(testConfig(server.URL))
	_, err := client.GenerateReply(context.Background(), []llm.ChatMessage{{Role: "user", Content: "hi"}})
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeGeneration) {
		t.Fatalf("err = %v, want generation error", err)
	}
}
