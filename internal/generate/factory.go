package generate

import (
	"context"
	"fmt"
	"io"
	"time"

	"pdfquiz/internal/config"
	"pdfquiz/internal/gemini"
	"pdfquiz/internal/logger"
)

// New builds the Generator selected by cfg.GeneratorProvider. The returned
// closer releases provider resources and is never nil.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Generator, io.Closer, error) {
	switch cfg.GeneratorProvider {
	case "gemini":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return nil, nil, err
		}
		return &LLM{Completer: client}, closerFunc(client.Close), nil
	case "openai":
		c, err := NewOpenAICompleter(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return &LLM{Completer: c}, closerFunc(func() {}), nil
	case "local", "":
		return &Local{Seed: time.Now().UnixNano()}, closerFunc(func() {}), nil
	default:
		return nil, nil, fmt.Errorf("unknown generator provider %q", cfg.GeneratorProvider)
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
