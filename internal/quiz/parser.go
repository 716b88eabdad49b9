package quiz

import (
	"regexp"
	"strings"
)

const blockDelimiter = "\n\n"

// optionLine matches "<label> <text>" where the label is one or two ASCII
// alphanumerics followed by ')'. Exactly one space separates the marker from
// the option text; anything after that single space is kept verbatim.
var optionLine = regexp.MustCompile(`^([A-Za-z0-9]{1,2}\)) (.*)$`)

// tokenizeOption splits an option line into its label and text.
func tokenizeOption(line string) (Option, bool) {
	m := optionLine.FindStringSubmatch(line)
	if m == nil {
		return Option{}, false
	}
	return Option{Label: m[1], Text: m[2]}, true
}

// Parse segments blob into question blocks and returns one ParsedQuestion per
// block whose last line contains the answer marker. Blocks without an answer
// line are skipped. Parse never fails; malformed input yields fewer questions.
func Parse(blob string) []ParsedQuestion {
	blob = strings.ReplaceAll(blob, "\r\n", "\n")
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil
	}

	var out []ParsedQuestion
	for _, block := range strings.Split(blob, blockDelimiter) {
		q, ok := parseBlock(block)
		if !ok {
			continue
		}
		out = append(out, q)
	}
	return out
}

func parseBlock(block string) (ParsedQuestion, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return ParsedQuestion{}, false
	}
	lines := strings.Split(block, "\n")
	last := lines[len(lines)-1]
	if !strings.Contains(last, AnswerMarker) {
		return ParsedQuestion{}, false
	}

	q := ParsedQuestion{
		Prompt:         lines[0],
		ExpectedAnswer: strings.TrimSpace(strings.ReplaceAll(last, AnswerMarker, "")),
	}

	if len(lines) >= 3 {
		if _, ok := tokenizeOption(lines[1]); ok {
			q.Kind = KindMultipleChoice
			q.Options = parseOptions(lines[1 : len(lines)-1])
			return q, true
		}
	}

	q.Kind = KindTrueFalse
	q.Options = trueFalseOptions()
	return q, true
}

// parseOptions tokenizes the interior lines of a multiple-choice block. A line
// that is not an option line continues the text of the previous option.
func parseOptions(lines []string) []Option {
	opts := make([]Option, 0, len(lines))
	for _, line := range lines {
		if opt, ok := tokenizeOption(line); ok {
			opts = append(opts, opt)
			continue
		}
		cont := strings.TrimSpace(line)
		if cont == "" || len(opts) == 0 {
			continue
		}
		prev := &opts[len(opts)-1]
		prev.Text = strings.TrimSpace(prev.Text + " " + cont)
	}
	return opts
}
