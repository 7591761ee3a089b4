// Package tracker records token consumption per query and serves
// aggregate usage reports from a SQLite-backed append-only log.
package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/askrepo-ai/askrepo/pkg/models"
	"github.com/askrepo-ai/askrepo/pkg/tokens"
)

// TimeLayout is the fixed-width UTC timestamp format stored in the
// usage table. Fixed width keeps lexicographic and chronological order
// identical, so TEXT range filters behave.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t in the ledger's stored timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Tracker records and queries per-query token usage.
type Tracker interface {
	// ObserveRequest is called once per model invocation start with the
	// prompt texts; it increments the session input counter.
	ObserveRequest(prompts []string)
	// ObserveResponse is called once per model invocation completion with
	// the generated texts; it increments the session output counter and
	// recomputes the session total.
	ObserveResponse(outputs []string)
	// LogQuery appends one immutable usage record. A negative token count
	// is computed from the corresponding text via the configured counter.
	LogQuery(ctx context.Context, userQuery, responseText string, inputTokens, outputTokens int) error
	// SessionStats returns a snapshot of the live session counters.
	SessionStats() models.SessionStats
	// ResetSession zeroes the session counters; durable records are untouched.
	ResetSession()
	// Report aggregates records newest-first within the optional date
	// bounds, capped at limit rows.
	Report(ctx context.Context, limit int, startDate, endDate string) (models.Report, error)
	// Close releases resources.
	Close() error
}

// SQLiteTracker implements Tracker with a SQLite database.
type SQLiteTracker struct {
	db        *sql.DB
	counter   tokens.Counter
	modelName string

	mu      sync.Mutex
	session models.SessionStats
	lastTS  time.Time
}

const createTable = `
CREATE TABLE IF NOT EXISTS token_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	user_query TEXT,
	response_length INTEGER,
	input_tokens INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	model_name TEXT
);
CREATE INDEX IF NOT EXISTS idx_token_usage_time ON token_usage(timestamp);
`

// New opens the usage database and ensures the schema exists. Re-opening
// an existing database leaves prior records intact.
func New(dbPath, modelName string, counter tokens.Counter) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate usage db: %w", err)
	}

	return &SQLiteTracker{db: db, counter: counter, modelName: modelName}, nil
}

// ObserveRequest counts the joined prompt texts into the session input counter.
func (t *SQLiteTracker) ObserveRequest(prompts []string) {
	if len(prompts) == 0 {
		return
	}
	n := t.counter.Count(strings.Join(prompts, " "))
	t.mu.Lock()
	t.session.InputTokens += n
	t.mu.Unlock()
}

// ObserveResponse counts the joined generated texts into the session
// output counter and recomputes the session total from both counters.
func (t *SQLiteTracker) ObserveResponse(outputs []string) {
	if len(outputs) == 0 {
		return
	}
	n := t.counter.Count(strings.Join(outputs, " "))
	t.mu.Lock()
	t.session.OutputTokens += n
	t.session.TotalTokens = t.session.InputTokens + t.session.OutputTokens
	t.mu.Unlock()
}

// nextTimestamp returns a stored-format timestamp that never moves
// backwards across appends, so insertion order matches timestamp order.
func (t *SQLiteTracker) nextTimestamp() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	if now.Before(t.lastTS) {
		now = t.lastTS
	}
	t.lastTS = now
	return now.Format(TimeLayout)
}

// LogQuery appends one usage record and bumps the session query counter.
// This is the only durable-store mutator; storage errors propagate.
func (t *SQLiteTracker) LogQuery(ctx context.Context, userQuery, responseText string, inputTokens, outputTokens int) error {
	if inputTokens < 0 {
		inputTokens = t.counter.Count(userQuery)
	}
	if outputTokens < 0 {
		outputTokens = t.counter.Count(responseText)
	}
	totalTokens := inputTokens + outputTokens

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO token_usage (timestamp, user_query, response_length, input_tokens, output_tokens, total_tokens, model_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.nextTimestamp(), userQuery, len(responseText), inputTokens, outputTokens, totalTokens, t.modelName,
	)
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}

	t.mu.Lock()
	t.session.Queries++
	t.mu.Unlock()
	return nil
}

// SessionStats returns a snapshot of the live session counters.
func (t *SQLiteTracker) SessionStats() models.SessionStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// ResetSession zeroes all four session counters.
func (t *SQLiteTracker) ResetSession() {
	t.mu.Lock()
	t.session = models.SessionStats{}
	t.mu.Unlock()
}

// Report aggregates usage newest-first, optionally bounded by inclusive
// start/end dates in the stored timestamp format (empty means unbounded).
// Totals and the average cover the same limit-bounded window as the row
// fetch; callers needing full totals must pass a sufficiently large limit.
func (t *SQLiteTracker) Report(ctx context.Context, limit int, startDate, endDate string) (models.Report, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT timestamp, user_query, input_tokens, output_tokens, total_tokens FROM token_usage WHERE 1=1`
	var args []any
	if startDate != "" {
		q += ` AND timestamp >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		q += ` AND timestamp <= ?`
		args = append(args, endDate)
	}
	q += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return models.Report{}, fmt.Errorf("query usage report: %w", err)
	}
	defer rows.Close()

	var rep models.Report
	for rows.Next() {
		var rq models.RecentQuery
		var query sql.NullString
		if err := rows.Scan(&rq.Timestamp, &query, &rq.InputTokens, &rq.OutputTokens, &rq.TotalTokens); err != nil {
			return models.Report{}, fmt.Errorf("scan usage row: %w", err)
		}
		rq.Query = query.String

		rep.TotalQueries++
		rep.TotalInputTokens += rq.InputTokens
		rep.TotalOutputTokens += rq.OutputTokens
		rep.TotalTokens += rq.TotalTokens
		if len(rep.RecentQueries) < 10 {
			rep.RecentQueries = append(rep.RecentQueries, rq)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Report{}, fmt.Errorf("read usage rows: %w", err)
	}

	if rep.TotalQueries > 0 {
		rep.AverageTokensPerQuery = float64(rep.TotalTokens) / float64(rep.TotalQueries)
	}
	return rep, nil
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}
