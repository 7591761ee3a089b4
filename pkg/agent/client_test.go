package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askrepo-ai/askrepo/pkg/config"
	"github.com/askrepo-ai/askrepo/pkg/models"
)

func TestCompleteSuccess(t *testing.T) {
	var gotAuth, gotRequestID string
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "The answer."}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
		})
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{URL: srv.URL, APIKey: "sk-test", Temperature: 0.2, MaxTokens: 100}, "gpt-4o-mini")
	answer, usage, err := c.Complete(context.Background(), []models.ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	if answer != "The answer." {
		t.Errorf("unexpected answer %q", answer)
	}
	if usage == nil || usage.PromptTokens != 12 || usage.CompletionTokens != 7 {
		t.Errorf("unexpected usage %+v", usage)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected X-Request-ID header")
	}
	if gotReq.Model != "gpt-4o-mini" || len(gotReq.Messages) != 1 {
		t.Errorf("unexpected request %+v", gotReq)
	}
}

func TestCompleteNoUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{URL: srv.URL}, "m")
	_, usage, err := c.Complete(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if usage != nil {
		t.Errorf("expected nil usage when provider omits it, got %+v", usage)
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{URL: srv.URL}, "m")
	if _, _, err := c.Complete(context.Background(), nil); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{URL: srv.URL}, "m")
	if _, _, err := c.Complete(context.Background(), nil); err == nil {
		t.Error("expected error for empty choices")
	}
}
