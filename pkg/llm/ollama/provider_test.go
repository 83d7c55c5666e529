package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sysassist-be/pkg/llm"
)

func TestChatSendsModelAndMapsRoles(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "df -h shows usage"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "disk usage?"},
		{Role: "model", Content: "earlier reply"},
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "df -h shows usage" {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "llama3" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Stream {
		t.Error("streaming must be disabled")
	}
	if got.Messages[1].Role != "assistant" {
		t.Errorf("role %q not mapped to assistant", got.Messages[1].Role)
	}
}

func TestChatModelOverride(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	_, err := p.Generate(context.Background(), "q", llm.WithModel("qwen2.5"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Model != "qwen2.5" {
		t.Errorf("model = %q, want override", got.Model)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	_, err := p.Generate(context.Background(), "q")

	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
