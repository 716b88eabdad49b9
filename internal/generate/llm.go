package generate

import (
	"context"
	"fmt"
	"strings"
)

// Completer sends one prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLM implements Generator on top of any Completer.
type LLM struct {
	Completer Completer
}

var _ Generator = (*LLM)(nil)

func (g *LLM) MCQ(ctx context.Context, text string, n int) (string, error) {
	return g.run(ctx, "mcq", MCQPrompt(text, n))
}

func (g *LLM) TrueFalse(ctx context.Context, text string, n int) (string, error) {
	return g.run(ctx, "true/false", TrueFalsePrompt(text, n))
}

func (g *LLM) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	return g.run(ctx, "summary", SummaryPrompt(text, sentences))
}

func (g *LLM) run(ctx context.Context, kind, prompt string) (string, error) {
	out, err := g.Completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("%s generation failed: %w", kind, err)
	}
	out = Normalize(out)
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s generation failed: %w", kind, ErrEmptyOutput)
	}
	return out, nil
}
