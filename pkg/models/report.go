package models

// Report aggregates usage over a date-filtered, limit-bounded row window.
type Report struct {
	TotalQueries          int           `json:"total_queries"`
	TotalInputTokens      int           `json:"total_input_tokens"`
	TotalOutputTokens     int           `json:"total_output_tokens"`
	TotalTokens           int           `json:"total_tokens"`
	AverageTokensPerQuery float64       `json:"average_tokens_per_query"`
	RecentQueries         []RecentQuery `json:"recent_queries"`
}

// RecentQuery is one row of the newest-first query listing in a Report.
type RecentQuery struct {
	Timestamp    string `json:"timestamp"`
	Query        string `json:"query"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}
