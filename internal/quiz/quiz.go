// Package quiz parses generated quiz text into questions and grades answers
// against the "Answer:" line embedded in each question block.
//
// A quiz blob is a sequence of blocks separated by a blank line:
//
//	<prompt line>
//	a) <option text>
//	b) <option text>
//	Answer: <value>
//
// True/false blocks omit the option lines.
package quiz

// Kind classifies a parsed question.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
)

// AnswerMarker is the literal that identifies the answer line of a block.
const AnswerMarker = "Answer:"

// Option is one selectable answer. Label is the option marker ("a)") for
// multiple-choice questions and equals Text for true/false questions.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ParsedQuestion is the view derived from one question block.
type ParsedQuestion struct {
	Prompt         string   `json:"prompt"`
	Kind           Kind     `json:"kind"`
	Options        []Option `json:"options"`
	ExpectedAnswer string   `json:"expected_answer"`
}

// trueFalseOptions is the implicit option set of every true/false question.
func trueFalseOptions() []Option {
	return []Option{
		{Label: "True", Text: "True"},
		{Label: "False", Text: "False"},
	}
}

// Outcome is the result of grading one answer.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	// OutcomeUnanswered is returned when the choice does not resolve to any
	// option of the question.
	OutcomeUnanswered Outcome = "unanswered"
)

// Correct reports whether the outcome counts as a correct answer.
func (o Outcome) Correct() bool { return o == OutcomeCorrect }
