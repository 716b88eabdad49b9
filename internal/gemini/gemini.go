package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdfquiz/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	// DefaultModelName is the Gemini model used when none is configured
	DefaultModelName = "gemini-2.0-flash"
	// maxAttempts is how often a request is tried before giving up
	maxAttempts = 3
)

// textGenerator sends one prompt and returns the response text.
type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client wraps the Gemini client
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *logger.Logger
	// retryDelay is the pause between failed attempts
	retryDelay time.Duration
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey, modelName string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if modelName == "" {
		modelName = DefaultModelName
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "text/plain"
	// Lower temperature keeps the output close to the requested format
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(int32(8192))

	return &Client{
		client:     client,
		model:      model,
		log:        log,
		retryDelay: 2 * time.Second,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	c.client.Close()
}

// Complete sends the system instruction and prompt to Gemini and returns the
// text of the first candidate.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	// Per-call copy so concurrent requests do not share the instruction.
	model := *c.model
	model.SystemInstruction = genai.NewUserContent(genai.Text(system))

	return c.withRetry(ctx, modelGenerator{model: &model}, prompt)
}

// withRetry tries gen up to maxAttempts times, waiting retryDelay between
// attempts.
func (c *Client) withRetry(ctx context.Context, gen textGenerator, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := gen.GenerateText(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		c.log.Warn("gemini request failed", "attempt", attempt, "max_attempts", maxAttempts, "error", err)

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return "", fmt.Errorf("failed to generate content after %d attempts: %w", maxAttempts, lastErr)
}

type modelGenerator struct {
	model *genai.GenerativeModel
}

func (g modelGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return out, nil
}
