package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestProvider(srvURL string) *OpenRouterProvider {
	p := NewOpenRouterProvider("sk-test", "deepseek/deepseek-chat")
	p.BaseURL = srvURL
	return p
}

func TestChatSendsBearerToken(t *testing.T) {
	var auth string
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"content":"hello"}}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	reply, err := p.Generate(context.Background(), "hi")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello" {
		t.Errorf("reply = %q", reply)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("authorization = %q", auth)
	}
	if got.Model != "deepseek/deepseek-chat" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Generate(context.Background(), "q")

	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)
	_, err := p.Generate(context.Background(), "q")

	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
