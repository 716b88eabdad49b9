package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdfquiz/internal/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	in := "```text\n**Q1?**  \na) Paris\nb) London\nAnswer: a) Paris\n\n\n\nQ2?\nAnswer: True\n```\n"
	want := "Q1?\na) Paris\nb) London\nAnswer: a) Paris\n\nQ2?\nAnswer: True"
	assert.Equal(t, want, Normalize(in))
}

func TestTruncate(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("é", MaxInputChars+10)
	got := Truncate(long)
	assert.Equal(t, MaxInputChars, len([]rune(got)))
	assert.True(t, strings.HasPrefix(long, got))
}

type fakeCompleter struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func TestLLM_NormalizesOutput(t *testing.T) {
	fc := &fakeCompleter{out: "```\nSky is blue.\nAnswer: True\n```"}
	g := &LLM{Completer: fc}

	out, err := g.TrueFalse(context.Background(), "source text", 3)
	require.NoError(t, err)
	assert.Equal(t, "Sky is blue.\nAnswer: True", out)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "exactly 3 true/false statements")
	assert.Contains(t, fc.prompts[0], "source text")
}

func TestLLM_Errors(t *testing.T) {
	g := &LLM{Completer: &fakeCompleter{out: "  \n"}}
	_, err := g.Summarize(context.Background(), "text", 5)
	assert.True(t, errors.Is(err, ErrEmptyOutput))

	boom := errors.New("boom")
	g = &LLM{Completer: &fakeCompleter{err: boom}}
	_, err = g.MCQ(context.Background(), "text", 5)
	assert.True(t, errors.Is(err, boom))
}

func TestOpenAICompleter(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "Q?\nAnswer: False\n"},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)

	c, err := NewOpenAICompleter(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Q?\nAnswer: False", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "prompt", got.Messages[1].Content)
}

func TestOpenAICompleter_RequiresKey(t *testing.T) {
	_, err := NewOpenAICompleter(OpenAIConfig{})
	assert.Error(t, err)
}

const studyText = `Photosynthesis converts light energy into chemical energy inside plant cells.
Chlorophyll absorbs light mostly in the blue and red wavelengths of the spectrum.
The Calvin cycle uses carbon dioxide to build glucose molecules for the plant.
Oxygen is released as a byproduct when water molecules are split during photosynthesis.
Plants store glucose as starch so that energy remains available during the night.
Stomata on the leaf surface regulate the exchange of carbon dioxide and oxygen.`

func TestLocal_MCQParsesAndGrades(t *testing.T) {
	g := &Local{Seed: 42}
	blob, err := g.MCQ(context.Background(), studyText, 4)
	require.NoError(t, err)

	qs := quiz.Parse(blob)
	require.Len(t, qs, 4)
	for _, q := range qs {
		assert.Equal(t, quiz.KindMultipleChoice, q.Kind, q.Prompt)
		assert.Contains(t, q.Prompt, "_____")
		assert.GreaterOrEqual(t, len(q.Options), 2)

		correct := 0
		for _, o := range q.Options {
			if quiz.Grade(q, o.Text) == quiz.OutcomeCorrect {
				correct++
			}
		}
		assert.Equal(t, 1, correct, "exactly one option grades correct for %q", q.Prompt)
	}

	again, err := g.MCQ(context.Background(), studyText, 4)
	require.NoError(t, err)
	assert.Equal(t, blob, again, "same seed, same output")
}

func TestLocal_TrueFalse(t *testing.T) {
	g := &Local{Seed: 7}
	blob, err := g.TrueFalse(context.Background(), studyText, 10)
	require.NoError(t, err)

	qs := quiz.Parse(blob)
	require.Len(t, qs, 6, "one statement per usable sentence")
	for _, q := range qs {
		assert.Equal(t, quiz.KindTrueFalse, q.Kind)
		assert.Contains(t, []string{"True", "False"}, q.ExpectedAnswer)
	}
}

func TestLocal_Summarize(t *testing.T) {
	g := &Local{}
	out, err := g.Summarize(context.Background(), studyText, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.LessOrEqual(t, strings.Count(out, ". ")+1, 2)
}

func TestLocal_InsufficientText(t *testing.T) {
	g := &Local{}
	_, err := g.MCQ(context.Background(), "Too short.", 3)
	assert.ErrorIs(t, err, ErrInsufficientText)
	_, err = g.Summarize(context.Background(), "", 3)
	assert.ErrorIs(t, err, ErrInsufficientText)
}
