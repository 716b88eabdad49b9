package handlers

import (
	"fmt"
	"net/http"

	"pdfquiz/internal/models"
	"pdfquiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

// HandleGetState returns the current session as JSON.
func (h *Handler) HandleGetState(c *gin.Context) {
	st, err := h.Study.State(c.Request.Context(), sessionID(c))
	if err != nil {
		h.Log.Error("failed to load session", "session_id", sessionID(c), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, models.NewStateResponse(st))
}

// HandleGetQuiz returns the parsed current quiz with recorded outcomes.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	st, err := h.Study.State(c.Request.Context(), sessionID(c))
	if err != nil {
		h.Log.Error("failed to load session", "session_id", sessionID(c), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, models.NewQuizResponse(st.Scorecard()))
}

// HandleParseQuiz splits a quiz blob into questions without touching the
// session.
func (h *Handler) HandleParseQuiz(c *gin.Context) {
	var req models.ParseQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	questions := quiz.Parse(req.Blob)
	if questions == nil {
		questions = []quiz.ParsedQuestion{}
	}
	c.JSON(http.StatusOK, models.ParseQuizResponse{Questions: questions, Count: len(questions)})
}

// HandleGradeQuiz grades one choice against question index of a blob.
func (h *Handler) HandleGradeQuiz(c *gin.Context) {
	var req models.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}
	questions := quiz.Parse(req.Blob)
	index := *req.Index
	if index >= len(questions) {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("question index %d out of range (%d questions)", index, len(questions)),
		})
		return
	}
	q := questions[index]
	outcome := quiz.Grade(q, req.Choice)
	c.JSON(http.StatusOK, models.GradeResponse{
		Index:          index,
		Choice:         req.Choice,
		Outcome:        outcome,
		Correct:        outcome.Correct(),
		ExpectedAnswer: q.ExpectedAnswer,
	})
}
