package models

import (
	"time"

	"pdfquiz/internal/quiz"
	"pdfquiz/internal/session"
)

// ErrorResponse is the body of every failed JSON request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryEntry is one generation as shown in the history sidebar.
type HistoryEntry struct {
	ID         string         `json:"id"`
	Heading    string         `json:"heading"`
	Action     session.Action `json:"action"`
	Output     string         `json:"output"`
	ArchiveURL string         `json:"archive_url,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// StateResponse is the client view of a session. The extracted text is
// reduced to its length; the full text never leaves the server.
type StateResponse struct {
	FileName     string         `json:"file_name,omitempty"`
	HasDocument  bool           `json:"has_document"`
	TextLength   int            `json:"text_length"`
	TotalPages   int            `json:"total_pages"`
	NumPages     int            `json:"num_pages"`
	NumQuestions int            `json:"num_questions"`
	QuizAction   session.Action `json:"quiz_action,omitempty"`
	QuizText     string         `json:"quiz_text,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Quiz         QuizResponse   `json:"quiz"`
	History      []HistoryEntry `json:"history"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// QuizResponse is the parsed current quiz with every recorded outcome.
type QuizResponse struct {
	Questions  []quiz.Result `json:"questions"`
	Correct    int           `json:"correct"`
	Incorrect  int           `json:"incorrect"`
	Unanswered int           `json:"unanswered"`
	Total      int           `json:"total"`
}

// NewQuizResponse converts a scorecard.
func NewQuizResponse(card quiz.Scorecard) QuizResponse {
	results := card.Results
	if results == nil {
		results = []quiz.Result{}
	}
	return QuizResponse{
		Questions:  results,
		Correct:    card.Correct,
		Incorrect:  card.Incorrect,
		Unanswered: card.Unanswered,
		Total:      card.Total(),
	}
}

// NewStateResponse converts session state for the JSON API.
func NewStateResponse(st session.State) StateResponse {
	history := make([]HistoryEntry, 0, len(st.History))
	for _, h := range st.History {
		history = append(history, HistoryEntry{
			ID:         h.ID,
			Heading:    h.Heading(),
			Action:     h.Action,
			Output:     h.Output,
			ArchiveURL: h.ArchiveURL,
			CreatedAt:  h.CreatedAt,
		})
	}
	return StateResponse{
		FileName:     st.FileName,
		HasDocument:  st.HasDocument(),
		TextLength:   len([]rune(st.PDFText)),
		TotalPages:   st.TotalPages,
		NumPages:     st.NumPages,
		NumQuestions: st.NumQuestions,
		QuizAction:   st.QuizAction,
		QuizText:     st.QuizText,
		Summary:      st.Summary,
		Quiz:         NewQuizResponse(st.Scorecard()),
		History:      history,
		UpdatedAt:    st.UpdatedAt,
	}
}

// ParseQuizRequest asks for a blob to be split into questions.
type ParseQuizRequest struct {
	Blob string `json:"blob" binding:"required"`
}

// ParseQuizResponse lists the questions found in a blob.
type ParseQuizResponse struct {
	Questions []quiz.ParsedQuestion `json:"questions"`
	Count     int                   `json:"count"`
}

// GradeRequest grades one choice against question Index of Blob.
type GradeRequest struct {
	Blob   string `json:"blob" binding:"required"`
	Index  *int   `json:"index" binding:"required,min=0"`
	Choice string `json:"choice"`
}

// GradeResponse is the outcome of a single choice.
type GradeResponse struct {
	Index          int          `json:"index"`
	Choice         string       `json:"choice"`
	Outcome        quiz.Outcome `json:"outcome"`
	Correct        bool         `json:"correct"`
	ExpectedAnswer string       `json:"expected_answer"`
}

// SettingsRequest is the JSON form of the page and question selectors.
type SettingsRequest struct {
	NumPages     int `json:"num_pages" form:"num_pages" binding:"required"`
	NumQuestions int `json:"num_questions" form:"num_questions" binding:"required"`
}

// GenerateRequest selects a generation action.
type GenerateRequest struct {
	Action string `json:"action" form:"action" binding:"required"`
}

// AnswerRequest is a self-test choice.
type AnswerRequest struct {
	Choice string `json:"choice" form:"choice"`
}
