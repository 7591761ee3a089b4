// Package agent answers natural-language questions about a GitHub
// repository through an OpenAI-compatible chat endpoint.
package agent

import (
	"context"
	"log"

	"github.com/askrepo-ai/askrepo/pkg/config"
	"github.com/askrepo-ai/askrepo/pkg/models"
)

// UsageObserver receives model-call lifecycle notifications.
type UsageObserver interface {
	ObserveRequest(prompts []string)
	ObserveResponse(outputs []string)
}

// Agent orchestrates one question: repository context, prompt assembly,
// LLM call and usage observation.
type Agent struct {
	llm      *Client
	github   *GitHubClient
	observer UsageObserver
}

// New creates an Agent wired to the configured LLM and repository.
func New(cfg *config.Config, observer UsageObserver) *Agent {
	return &Agent{
		llm:      NewClient(cfg.LLM, cfg.Model),
		github:   NewGitHubClient(cfg.GitHub),
		observer: observer,
	}
}

// Ask answers one question about the repository. On failure the error
// propagates and no response observation occurs; the caller must not
// cache or log a failed answer. Provider-reported usage is returned when
// available so the caller can log exact token counts.
func (a *Agent) Ask(ctx context.Context, query string) (string, *models.Usage, error) {
	system := SystemPrompt()
	if repoCtx, err := a.github.RepoContext(ctx); err != nil {
		log.Printf("agent: repository context unavailable: %v", err)
	} else {
		system += "\n\nREPOSITORY CONTEXT:\n" + repoCtx
	}

	messages := []models.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: query},
	}

	a.observer.ObserveRequest([]string{system, query})

	answer, usage, err := a.llm.Complete(ctx, messages)
	if err != nil {
		return "", nil, err
	}

	a.observer.ObserveResponse([]string{answer})
	return answer, usage, nil
}
