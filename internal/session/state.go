// Package session holds the per-browser-session state of the study assistant
// and the pure transition function that applies user actions to it.
package session

import (
	"errors"
	"time"

	"pdfquiz/internal/quiz"
)

const (
	MinQuestions     = 1
	MaxQuestions     = 50
	DefaultQuestions = 5
)

var (
	ErrNoDocument      = errors.New("please upload a PDF first")
	ErrInvalidSetting  = errors.New("invalid setting")
	ErrUnknownAction   = errors.New("unknown action")
	ErrNoQuiz          = errors.New("no quiz has been generated")
	ErrQuestionIndex   = errors.New("question index out of range")
	ErrNotFound        = errors.New("session not found")
	ErrEmptyGeneration = errors.New("generation returned no text")
)

// Action is a generation request selected in the UI.
type Action string

const (
	ActionMCQ       Action = "mcq"
	ActionTrueFalse Action = "true_false"
	ActionSummary   Action = "summary"
)

// ParseAction validates a form value.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionMCQ, ActionTrueFalse, ActionSummary:
		return a, nil
	default:
		return "", ErrUnknownAction
	}
}

// Label is the heading used for history entries and download buttons.
func (a Action) Label() string {
	switch a {
	case ActionMCQ:
		return "MCQ Generated"
	case ActionTrueFalse:
		return "True/False Generated"
	case ActionSummary:
		return "Summary"
	default:
		return string(a)
	}
}

// IsQuiz reports whether the action produces a gradable quiz blob.
func (a Action) IsQuiz() bool { return a == ActionMCQ || a == ActionTrueFalse }

// DownloadName is the file name offered for the action's output.
func (a Action) DownloadName() string {
	switch a {
	case ActionMCQ:
		return "mcq_questions.txt"
	case ActionTrueFalse:
		return "true_false_questions.txt"
	default:
		return "summary.txt"
	}
}

// Interaction is one generation kept in the session history.
type Interaction struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Output     string    `json:"output"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Heading renders the history title the way the sidebar shows it.
func (i Interaction) Heading() string { return "### " + i.Action.Label() }

// State is everything the UI needs to render one session.
type State struct {
	FileName     string         `json:"file_name,omitempty"`
	PDFText      string         `json:"pdf_text,omitempty"`
	Pages        []string       `json:"pages,omitempty"`
	TotalPages   int            `json:"total_pages"`
	NumPages     int            `json:"num_pages"`
	NumQuestions int            `json:"num_questions"`
	QuizText     string         `json:"quiz_text,omitempty"`
	QuizAction   Action         `json:"quiz_action,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Answers      map[int]string `json:"answers,omitempty"`
	History      []Interaction  `json:"history,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// New returns the initial state of a fresh session.
func New() State {
	return State{
		TotalPages:   1,
		NumPages:     1,
		NumQuestions: DefaultQuestions,
	}
}

// HasDocument reports whether text has been extracted from an upload.
func (s State) HasDocument() bool { return s.PDFText != "" }

// Questions parses the current quiz blob. The result is derived on every
// call and never stored.
func (s State) Questions() []quiz.ParsedQuestion {
	return quiz.Parse(s.QuizText)
}

// Scorecard grades the recorded answers against the current quiz.
func (s State) Scorecard() quiz.Scorecard {
	return quiz.Score(s.Questions(), s.Answers)
}

// LatestOutput returns the most recent output of the given action.
func (s State) LatestOutput(a Action) (Interaction, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Action == a {
			return s.History[i], true
		}
	}
	return Interaction{}, false
}
