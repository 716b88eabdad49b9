package handlers

import (
	"fmt"
	"net/http"

	"pdfquiz/internal/api/web"
	"pdfquiz/internal/models"
	"pdfquiz/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type actionView struct {
	Value   session.Action
	Label   string
	Checked bool
}

type historyView struct {
	Label      string
	Output     string
	ArchiveURL string
}

type pageView struct {
	State        session.State
	Quiz         models.QuizResponse
	QuizHeading  string
	Actions      []actionView
	History      []historyView
	Flashes      []string
	Errors       []string
	Profile      *UserProfile
	MinQuestions int
	MaxQuestions int
}

var actionChoices = []struct {
	value session.Action
	label string
}{
	{session.ActionMCQ, "Generate MCQs"},
	{session.ActionTrueFalse, "Generate True/False Questions"},
	{session.ActionSummary, "Summarize"},
}

// HandleIndex renders the page for the current session.
func (h *Handler) HandleIndex(c *gin.Context) {
	id := sessionID(c)
	st, err := h.Study.State(c.Request.Context(), id)
	view := pageView{
		MinQuestions: session.MinQuestions,
		MaxQuestions: session.MaxQuestions,
	}
	if err != nil {
		h.Log.Error("failed to load session", "session_id", id, "error", err)
		view.Errors = append(view.Errors, "Your session could not be loaded. A new one has been started.")
		st = session.New()
	}
	view.State = st
	view.Quiz = models.NewQuizResponse(st.Scorecard())
	if st.QuizAction != "" {
		view.QuizHeading = st.QuizAction.Label()
	}

	selected := st.QuizAction
	if selected == "" {
		selected = session.ActionMCQ
	}
	for _, a := range actionChoices {
		view.Actions = append(view.Actions, actionView{Value: a.value, Label: a.label, Checked: a.value == selected})
	}
	for _, entry := range st.History {
		view.History = append(view.History, historyView{
			Label:      entry.Action.Label(),
			Output:     entry.Output,
			ArchiveURL: entry.ArchiveURL,
		})
	}

	s := sessions.Default(c)
	if flashes := s.Flashes(); len(flashes) > 0 {
		for _, f := range flashes {
			view.Flashes = append(view.Flashes, fmt.Sprint(f))
		}
		if err := s.Save(); err != nil {
			h.Log.Error("failed to clear flashes", "error", err)
		}
	}
	if p, ok := s.Get(ProfileSessionKey).(UserProfile); ok {
		view.Profile = &p
	}

	c.HTML(http.StatusOK, web.IndexTemplate, view)
}
