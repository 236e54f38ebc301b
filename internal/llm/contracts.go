package llm

import (
	"context"
	"errors"
)

// Generator is the completion API the parser consumes: prompt in, free-form
// text out. No semantic guarantees; everything that comes back goes through
// ParseItems and the shared assembler gate.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrStructuralParse reports a completion with no recoverable item data at
// all. It is the retryable outcome; items that parsed but failed validation
// are a data-quality result and are not retried.
var ErrStructuralParse = errors.New("no parseable item array in completion")
