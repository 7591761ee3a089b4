// Package tokens converts text to token counts for usage accounting.
package tokens

import (
	"log"

	"github.com/tiktoken-go/tokenizer"
)

// Counter converts text to a token count. Implementations never fail;
// Count always returns a value >= 0.
type Counter interface {
	Count(text string) int
}

// Estimator approximates token counts at roughly four characters per
// token. It is the unconditional safety net when no tokenizer resolves.
type Estimator struct{}

// Count estimates the token count of text.
func (Estimator) Count(text string) int {
	return len(text) / 4
}

// TiktokenCounter counts tokens with a resolved tiktoken codec.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// Count returns the exact token count of text. An encode failure falls
// back to the estimate rather than surfacing an error.
func (c *TiktokenCounter) Count(text string) int {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return Estimator{}.Count(text)
	}
	return len(ids)
}

// ForModel returns a Counter for the given model identifier. When a
// tiktoken codec resolves for the model the counter is exact; otherwise
// resolution fails silently to the estimator, logging an advisory
// warning. The chosen strategy is fixed for the counter's lifetime.
func ForModel(model string) Counter {
	if model == "" {
		return Estimator{}
	}
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		log.Printf("tokens: no tokenizer for %q, falling back to estimate: %v", model, err)
		return Estimator{}
	}
	return &TiktokenCounter{codec: codec}
}
