package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"pdfquiz/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("503 service unavailable")

// flakyGenerator fails until failures reaches zero.
type flakyGenerator struct {
	failures int
	calls    int
	prompts  []string
}

func (g *flakyGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.failures > 0 {
		g.failures--
		return "", errUnavailable
	}
	return "Question?\nAnswer: True", nil
}

func testClient(delay time.Duration) *Client {
	return &Client{log: logger.Nop(), retryDelay: delay}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{name: "first attempt", failures: 0, wantCalls: 1},
		{name: "recovers on last attempt", failures: 2, wantCalls: 3},
		{name: "gives up", failures: 5, wantCalls: maxAttempts, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &flakyGenerator{failures: tt.failures}
			out, err := testClient(time.Millisecond).withRetry(context.Background(), gen, "make a quiz")

			assert.Equal(t, tt.wantCalls, gen.calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errUnavailable)
				assert.Contains(t, err.Error(), "after 3 attempts")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Question?\nAnswer: True", out)
			for _, p := range gen.prompts {
				assert.Equal(t, "make a quiz", p)
			}
		})
	}
}

func TestWithRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &flakyGenerator{failures: 5}
	_, err := testClient(time.Hour).withRetry(ctx, gen, "make a quiz")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", logger.Nop())
	assert.Error(t, err)
}
