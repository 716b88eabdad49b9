package quiz

import "strings"

// Grade evaluates choice, the option text selected by the user, against the
// question's expected answer.
//
// Comparison is containment, not equality: for multiple choice the selected
// option's label must occur in the expected answer ("a)" in "a) Paris"); for
// true/false the lower-cased choice must occur in the lower-cased expected
// answer. A choice that matches no option grades as OutcomeUnanswered.
func Grade(q ParsedQuestion, choice string) Outcome {
	switch q.Kind {
	case KindMultipleChoice:
		idx := indexOfText(q.Options, choice)
		if idx < 0 {
			return OutcomeUnanswered
		}
		if strings.Contains(q.ExpectedAnswer, q.Options[idx].Label) {
			return OutcomeCorrect
		}
		return OutcomeIncorrect
	default:
		opt, ok := trueFalseChoice(choice)
		if !ok {
			return OutcomeUnanswered
		}
		if strings.Contains(strings.ToLower(q.ExpectedAnswer), strings.ToLower(opt)) {
			return OutcomeCorrect
		}
		return OutcomeIncorrect
	}
}

// indexOfText returns the position of the first option whose text equals
// text, or -1.
func indexOfText(opts []Option, text string) int {
	if text == "" {
		return -1
	}
	for i, o := range opts {
		if o.Text == text {
			return i
		}
	}
	return -1
}

func trueFalseChoice(choice string) (string, bool) {
	c := strings.TrimSpace(choice)
	for _, o := range trueFalseOptions() {
		if strings.EqualFold(c, o.Text) {
			return o.Text, true
		}
	}
	return "", false
}

// Result is the graded state of one question in a self-test.
type Result struct {
	Index    int            `json:"index"`
	Question ParsedQuestion `json:"question"`
	Choice   string         `json:"choice,omitempty"`
	Outcome  Outcome        `json:"outcome"`
}

// Scorecard summarises a self-test.
type Scorecard struct {
	Results    []Result `json:"results"`
	Correct    int      `json:"correct"`
	Incorrect  int      `json:"incorrect"`
	Unanswered int      `json:"unanswered"`
}

// Total returns the number of questions in the scorecard.
func (s Scorecard) Total() int { return len(s.Results) }

// Score grades every question against answers, keyed by question index.
// Questions without a recorded answer count as unanswered.
func Score(questions []ParsedQuestion, answers map[int]string) Scorecard {
	card := Scorecard{Results: make([]Result, 0, len(questions))}
	for i, q := range questions {
		choice, ok := answers[i]
		outcome := OutcomeUnanswered
		if ok {
			outcome = Grade(q, choice)
		}
		switch outcome {
		case OutcomeCorrect:
			card.Correct++
		case OutcomeIncorrect:
			card.Incorrect++
		default:
			card.Unanswered++
		}
		card.Results = append(card.Results, Result{
			Index:    i,
			Question: q,
			Choice:   choice,
			Outcome:  outcome,
		})
	}
	return card
}
