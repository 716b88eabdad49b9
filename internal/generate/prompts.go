package generate

import "fmt"

const systemPrompt = "You are a study assistant that writes exam questions and summaries strictly from the provided text. Reply in plain text only."

// MCQPrompt asks for n multiple-choice questions in blob format.
func MCQPrompt(text string, n int) string {
	return fmt.Sprintf(`Generate exactly %d multiple-choice questions based only on the text below.
Write every question in exactly this plain-text format, with one blank line between questions:

<question text>
a) <option>
b) <option>
c) <option>
d) <option>
Answer: <letter>) <correct option text>

Rules:
- Exactly one space after each option marker.
- No numbering, headings, markdown or commentary.
- The "Answer:" line is always the last line of a question.

Text:
%s`, n, text)
}

// TrueFalsePrompt asks for n true/false statements in blob format.
func TrueFalsePrompt(text string, n int) string {
	return fmt.Sprintf(`Generate exactly %d true/false statements based only on the text below.
Write every statement in exactly this plain-text format, with one blank line between statements:

<statement>
Answer: <True or False>

Rules:
- Mix true and false statements.
- No numbering, headings, markdown or commentary.

Text:
%s`, n, text)
}

// SummaryPrompt asks for a summary of the given length.
func SummaryPrompt(text string, sentences int) string {
	return fmt.Sprintf(`Summarize the text below in %d sentences of plain prose.
Do not use bullet points, headings or markdown.

Text:
%s`, sentences, text)
}
