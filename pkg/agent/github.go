package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/askrepo-ai/askrepo/pkg/config"
)

// GitHubClient fetches lightweight repository context used to ground answers.
type GitHubClient struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	httpClient *http.Client
}

// NewGitHubClient creates a client for one repository.
func NewGitHubClient(cfg config.GitHubConfig) *GitHubClient {
	return &GitHubClient{
		baseURL:    cfg.URL,
		token:      cfg.Token,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *GitHubClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github returned %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}
	return nil
}

type repoInfo struct {
	FullName        string `json:"full_name"`
	Description     string `json:"description"`
	DefaultBranch   string `json:"default_branch"`
	OpenIssuesCount int    `json:"open_issues_count"`
}

type commitInfo struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type issueInfo struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// RepoContext returns a compact textual summary of the repository:
// metadata, recent commits and open issues. Sections that fail to fetch
// are skipped; an error is returned only when nothing could be fetched.
func (g *GitHubClient) RepoContext(ctx context.Context) (string, error) {
	repoPath := fmt.Sprintf("/repos/%s/%s", g.owner, g.repo)
	var b strings.Builder
	var firstErr error
	fetched := 0

	var info repoInfo
	if err := g.get(ctx, repoPath, &info); err != nil {
		firstErr = err
	} else {
		fetched++
		fmt.Fprintf(&b, "Repository: %s (default branch %s, %d open issues)\n", info.FullName, info.DefaultBranch, info.OpenIssuesCount)
		if info.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", info.Description)
		}
	}

	var commits []commitInfo
	if err := g.get(ctx, repoPath+"/commits?per_page=5", &commits); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else if len(commits) > 0 {
		fetched++
		b.WriteString("\nRecent commits:\n")
		for _, c := range commits {
			msg := c.Commit.Message
			if i := strings.IndexByte(msg, '\n'); i >= 0 {
				msg = msg[:i]
			}
			fmt.Fprintf(&b, "- %.7s %s (%s, %s)\n", c.SHA, msg, c.Commit.Author.Name, c.Commit.Author.Date)
		}
	}

	var issues []issueInfo
	if err := g.get(ctx, repoPath+"/issues?state=open&per_page=5", &issues); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else if len(issues) > 0 {
		fetched++
		b.WriteString("\nOpen issues:\n")
		for _, is := range issues {
			fmt.Fprintf(&b, "- #%d %s\n", is.Number, is.Title)
		}
	}

	if fetched == 0 {
		return "", fmt.Errorf("fetch repository context: %w", firstErr)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
