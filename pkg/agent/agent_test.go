package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/askrepo-ai/askrepo/pkg/config"
)

// recordingObserver captures observe calls for assertions.
type recordingObserver struct {
	requests  [][]string
	responses [][]string
}

func (o *recordingObserver) ObserveRequest(prompts []string) {
	o.requests = append(o.requests, prompts)
}
func (o *recordingObserver) ObserveResponse(outputs []string) {
	o.responses = append(o.responses, outputs)
}

func testConfig(llmURL, githubURL string) *config.Config {
	cfg := config.Default()
	cfg.LLM.URL = llmURL
	cfg.GitHub.URL = githubURL
	cfg.GitHub.Owner = "acme"
	cfg.GitHub.Repo = "widgets"
	return cfg
}

func TestAskSuccess(t *testing.T) {
	gh := newGitHubTestServer(t, false)
	defer gh.Close()

	var gotSystem string
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) > 0 {
			gotSystem = req.Messages[0].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Issue #42 is open."}},
			},
			"usage": map[string]int{"prompt_tokens": 30, "completion_tokens": 6, "total_tokens": 36},
		})
	}))
	defer llm.Close()

	obs := &recordingObserver{}
	a := New(testConfig(llm.URL, gh.URL), obs)

	answer, usage, err := a.Ask(context.Background(), "Which issues are open?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Issue #42 is open." {
		t.Errorf("unexpected answer %q", answer)
	}
	if usage == nil || usage.PromptTokens != 30 {
		t.Errorf("unexpected usage %+v", usage)
	}

	// System prompt carries instructions and the fetched repository context.
	if !strings.Contains(gotSystem, "ALWAYS cite the source") {
		t.Error("system prompt missing instructions")
	}
	if !strings.Contains(gotSystem, "REPOSITORY CONTEXT") || !strings.Contains(gotSystem, "acme/widgets") {
		t.Error("system prompt missing repository context")
	}

	if len(obs.requests) != 1 || len(obs.responses) != 1 {
		t.Fatalf("expected 1 request + 1 response observation, got %d/%d", len(obs.requests), len(obs.responses))
	}
	if obs.responses[0][0] != "Issue #42 is open." {
		t.Errorf("response observation mismatch: %v", obs.responses[0])
	}
}

func TestAskPipelineFailure(t *testing.T) {
	gh := newGitHubTestServer(t, false)
	defer gh.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer llm.Close()

	obs := &recordingObserver{}
	a := New(testConfig(llm.URL, gh.URL), obs)

	if _, _, err := a.Ask(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from failed pipeline")
	}
	// The request was observed at invocation start, but no response was.
	if len(obs.requests) != 1 {
		t.Errorf("expected 1 request observation, got %d", len(obs.requests))
	}
	if len(obs.responses) != 0 {
		t.Errorf("expected no response observation on failure, got %d", len(obs.responses))
	}
}

func TestAskWithoutRepoContext(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer gh.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer llm.Close()

	a := New(testConfig(llm.URL, gh.URL), &recordingObserver{})
	answer, _, err := a.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("context fetch failure must not fail the question: %v", err)
	}
	if answer != "ok" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt()
	if !strings.Contains(p, "Example 3:") {
		t.Error("expected three few-shot examples")
	}
	if strings.Contains(p, "Example 4:") {
		t.Error("expected only three few-shot examples")
	}
}
