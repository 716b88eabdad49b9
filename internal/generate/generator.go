// Package generate produces quiz blobs and summaries from extracted text.
//
// MCQ and TrueFalse return text in the blob format understood by
// internal/quiz: blocks separated by a blank line, each ending in an
// "Answer: <value>" line.
package generate

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyOutput      = errors.New("generator returned no text")
	ErrInsufficientText = errors.New("not enough text to generate from")
)

const (
	// MaxInputChars bounds the text handed to a generator.
	MaxInputChars = 1500
	// SummarySentences is the length of generated summaries.
	SummarySentences = 5
)

// Generator is implemented by every generation backend.
type Generator interface {
	MCQ(ctx context.Context, text string, n int) (string, error)
	TrueFalse(ctx context.Context, text string, n int) (string, error)
	Summarize(ctx context.Context, text string, sentences int) (string, error)
}

// Truncate returns at most MaxInputChars characters of text without
// splitting a UTF-8 sequence.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxInputChars {
		return text
	}
	n := 0
	for i := range text {
		if n == MaxInputChars {
			return text[:i]
		}
		n++
	}
	return text
}

var (
	fenceLine  = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans model output so it matches the blob format: code fences
// and bold markers are dropped, trailing spaces are trimmed and runs of blank
// lines collapse to one.
func Normalize(out string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = fenceLine.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "**", "")

	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	out = strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
