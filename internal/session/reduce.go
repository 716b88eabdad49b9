package session

import (
	"fmt"
	"strings"
	"time"

	"pdfquiz/internal/pdftext"
)

// Event is a user action already resolved into data. Side effects (PDF
// extraction, generation, archiving) happen before the event is built, so
// Reduce stays pure.
type Event interface {
	apply(s State) (State, error)
}

// Uploaded records a freshly extracted document. When Pages is set, the
// working text is rebuilt from it whenever the page selection changes;
// otherwise Text is used as is.
type Uploaded struct {
	FileName   string
	TotalPages int
	NumPages   int
	Pages      []string
	Text       string
}

// SettingsChanged updates the page and question selectors.
type SettingsChanged struct {
	NumPages     int
	NumQuestions int
}

// Generated records the output of a generation call.
type Generated struct {
	ID         string
	Action     Action
	Output     string
	ArchiveURL string
	At         time.Time
}

// Answered records the choice for one question of the current quiz.
type Answered struct {
	Index  int
	Choice string
}

// Reset clears the whole session.
type Reset struct{}

// Reduce applies e to s and returns the next state. s is never modified; on
// error the returned state is s unchanged.
func Reduce(s State, e Event) (State, error) {
	next, err := e.apply(s.clone())
	if err != nil {
		return s, err
	}
	return next, nil
}

func (e Uploaded) apply(s State) (State, error) {
	total := e.TotalPages
	if total < 1 {
		total = 1
	}
	s.FileName = e.FileName
	s.TotalPages = total
	s.NumPages = pdftext.ClampPages(e.NumPages, total)
	s.Pages = append([]string(nil), e.Pages...)
	s.PDFText = e.Text
	if len(s.Pages) > 0 {
		s.PDFText = pdftext.JoinPages(s.Pages, s.NumPages)
	}
	s.QuizText = ""
	s.QuizAction = ""
	s.Summary = ""
	s.Answers = nil
	return s, nil
}

func (e SettingsChanged) apply(s State) (State, error) {
	if e.NumQuestions < MinQuestions || e.NumQuestions > MaxQuestions {
		return s, fmt.Errorf("%w: number of questions must be between %d and %d", ErrInvalidSetting, MinQuestions, MaxQuestions)
	}
	if e.NumPages < 1 || e.NumPages > s.TotalPages {
		return s, fmt.Errorf("%w: number of pages must be between 1 and %d", ErrInvalidSetting, s.TotalPages)
	}
	s.NumQuestions = e.NumQuestions
	if e.NumPages != s.NumPages && len(s.Pages) > 0 {
		s.PDFText = pdftext.JoinPages(s.Pages, e.NumPages)
	}
	s.NumPages = e.NumPages
	return s, nil
}

func (e Generated) apply(s State) (State, error) {
	if !s.HasDocument() {
		return s, ErrNoDocument
	}
	if _, err := ParseAction(string(e.Action)); err != nil {
		return s, err
	}
	if strings.TrimSpace(e.Output) == "" {
		return s, ErrEmptyGeneration
	}
	if e.Action.IsQuiz() {
		s.QuizText = e.Output
		s.QuizAction = e.Action
		s.Answers = nil
	} else {
		s.Summary = e.Output
	}
	s.History = append(s.History, Interaction{
		ID:         e.ID,
		Action:     e.Action,
		Output:     e.Output,
		ArchiveURL: e.ArchiveURL,
		CreatedAt:  e.At,
	})
	return s, nil
}

func (e Answered) apply(s State) (State, error) {
	if s.QuizText == "" {
		return s, ErrNoQuiz
	}
	if e.Index < 0 || e.Index >= len(s.Questions()) {
		return s, ErrQuestionIndex
	}
	if s.Answers == nil {
		s.Answers = make(map[int]string)
	}
	s.Answers[e.Index] = e.Choice
	return s, nil
}

func (Reset) apply(State) (State, error) {
	return New(), nil
}

// clone copies the reference-typed fields so transitions cannot alias the
// caller's state.
func (s State) clone() State {
	if s.Answers != nil {
		answers := make(map[int]string, len(s.Answers))
		for k, v := range s.Answers {
			answers[k] = v
		}
		s.Answers = answers
	}
	if s.History != nil {
		s.History = append([]Interaction(nil), s.History...)
	}
	return s
}
