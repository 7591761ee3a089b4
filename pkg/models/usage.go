package models

// Usage represents token usage reported by an LLM response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageRecord is one immutable row of per-query token usage.
type UsageRecord struct {
	ID             int64  `json:"id"`
	Timestamp      string `json:"timestamp"`
	UserQuery      string `json:"user_query"`
	ResponseLength int    `json:"response_length"`
	InputTokens    int    `json:"input_tokens"`
	OutputTokens   int    `json:"output_tokens"`
	TotalTokens    int    `json:"total_tokens"`
	ModelName      string `json:"model_name"`
}

// SessionStats holds the live in-memory counters for one process lifetime.
type SessionStats struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
	Queries      int `json:"queries"`
}
