package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/askrepo-ai/askrepo/pkg/agent"
	cachepkg "github.com/askrepo-ai/askrepo/pkg/cache/memory"
	"github.com/askrepo-ai/askrepo/pkg/tokens"
	"github.com/askrepo-ai/askrepo/pkg/tracker"
)

func newAskCmd() *cobra.Command {
	var (
		configPath string
		owner      string
		repo       string
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Interactive question shell for a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if owner != "" {
				cfg.GitHub.Owner = owner
			}
			if repo != "" {
				cfg.GitHub.Repo = repo
			}
			if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
				return fmt.Errorf("repository not set: use --owner/--repo or the config file")
			}

			counter := tokens.ForModel(cfg.Model)
			tr, err := tracker.New(cfg.DBPath, cfg.Model, counter)
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			qc := cachepkg.New(cfg.Cache.TTL)
			ag := agent.New(cfg, tr)

			return runShell(cmd.Context(), cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.Model, cfg.Cache.Enabled, qc, ag, tr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&owner, "owner", "", "repository owner (overrides config)")
	cmd.Flags().StringVar(&repo, "repo", "", "repository name (overrides config)")
	return cmd
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".askrepo_history")
}

func runShell(ctx context.Context, owner, repo, model string, cacheEnabled bool, qc *cachepkg.Cache, ag *agent.Agent, tr tracker.Tracker) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = line.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Printf("askrepo — %s/%s (model %s)\n", owner, repo, model)
	fmt.Println("Type a question, /help for commands, /quit to exit.")

	for {
		input, err := line.Prompt("? ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		query := strings.TrimSpace(input)
		if query == "" {
			continue
		}
		line.AppendHistory(query)

		if strings.HasPrefix(query, "/") {
			if quit := handleCommand(query, qc, tr); quit {
				break
			}
			continue
		}

		if cacheEnabled {
			if answer, ok := qc.Get(query, owner, repo); ok {
				fmt.Println("\n(cached)")
				fmt.Println(answer)
				continue
			}
		}

		answer, usage, err := ag.Ask(ctx, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(answer)

		inTok, outTok := -1, -1
		if usage != nil {
			inTok, outTok = usage.PromptTokens, usage.CompletionTokens
		}
		if err := tr.LogQuery(ctx, query, answer, inTok, outTok); err != nil {
			fmt.Fprintf(os.Stderr, "error: record usage: %v\n", err)
		}
		if cacheEnabled {
			qc.Set(query, owner, repo, answer)
		}

		printSessionStats(tr)
	}

	fmt.Println("\nSession summary:")
	printSessionStats(tr)
	return nil
}

// handleCommand dispatches a slash command; it returns true to exit the shell.
func handleCommand(command string, qc *cachepkg.Cache, tr tracker.Tracker) bool {
	switch command {
	case "/quit", "/q", "/exit":
		return true
	case "/stats", "/s":
		printSessionStats(tr)
	case "/reset":
		tr.ResetSession()
		fmt.Println("Session counters reset.")
	case "/cache":
		stats := qc.Stats()
		fmt.Printf("Entries: %d\nTTL:     %ds\nHits:    %d\nMisses:  %d\n",
			stats.TotalEntries, stats.TTLSeconds, stats.Hits, stats.Misses)
	case "/sweep":
		qc.ClearExpired()
		fmt.Println("Expired cache entries cleared.")
	case "/clear":
		qc.Clear()
		fmt.Println("All cache entries cleared.")
	case "/help", "/h":
		fmt.Println(`Commands:
  /stats   show session token counters
  /reset   reset session counters
  /cache   show cache statistics
  /sweep   clear expired cache entries
  /clear   clear all cache entries
  /quit    exit`)
	default:
		fmt.Printf("Unknown command %s (try /help)\n", command)
	}
	return false
}

func printSessionStats(tr tracker.Tracker) {
	stats := tr.SessionStats()
	fmt.Printf("\nSession tokens — input: %d, output: %d, total: %d, queries: %d\n",
		stats.InputTokens, stats.OutputTokens, stats.TotalTokens, stats.Queries)
}
