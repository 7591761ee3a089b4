package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/askrepo-ai/askrepo/pkg/models"
	"github.com/askrepo-ai/askrepo/pkg/tokens"
	"github.com/askrepo-ai/askrepo/pkg/tracker"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		limit      int
		start      string
		end        string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show token usage report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Reports never count text, so the estimator suffices here.
			tr, err := tracker.New(cfg.DBPath, cfg.Model, tokens.Estimator{})
			if err != nil {
				return err
			}
			defer func() { _ = tr.Close() }()

			ctx := context.Background()

			rep, err := tr.Report(ctx, limit, start, end)
			if err != nil {
				return err
			}
			if rep.TotalQueries == 0 {
				fmt.Println("No usage data found.")
				return nil
			}

			printReport("Overall", rep)

			if len(rep.RecentQueries) > 0 {
				fmt.Println("\nRecent queries:")
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tQUERY\tINPUT\tOUTPUT\tTOTAL")
				for _, q := range rep.RecentQueries {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
						shortTimestamp(q.Timestamp), truncateQuery(q.Query, 50), q.InputTokens, q.OutputTokens, q.TotalTokens)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			// Fixed trailing windows, computed over the same row limit.
			weekly, err := tr.Report(ctx, limit, tracker.FormatTime(time.Now().AddDate(0, 0, -7)), "")
			if err != nil {
				return err
			}
			printReport("\nLast 7 days", weekly)

			daily, err := tr.Report(ctx, limit, tracker.FormatTime(time.Now().Add(-24*time.Hour)), "")
			if err != nil {
				return err
			}
			printReport("\nLast 24 hours", daily)

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().IntVar(&limit, "limit", 1000, "maximum rows aggregated per window")
	cmd.Flags().StringVar(&start, "start", "", "start timestamp (inclusive, RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end timestamp (inclusive, RFC 3339)")
	return cmd
}

func printReport(title string, rep models.Report) {
	fmt.Printf("%s:\n", title)
	fmt.Printf("  Queries:        %d\n", rep.TotalQueries)
	fmt.Printf("  Input tokens:   %d\n", rep.TotalInputTokens)
	fmt.Printf("  Output tokens:  %d\n", rep.TotalOutputTokens)
	fmt.Printf("  Total tokens:   %d\n", rep.TotalTokens)
	fmt.Printf("  Avg per query:  %.0f\n", rep.AverageTokensPerQuery)
}

func shortTimestamp(ts string) string {
	if t, err := time.Parse(tracker.TimeLayout, ts); err == nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return ts
}

func truncateQuery(q string, n int) string {
	if len(q) > n {
		return q[:n] + "..."
	}
	return q
}
