package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"pdfquiz/internal/models"
	"pdfquiz/internal/session"
	"pdfquiz/internal/study"

	"github.com/gin-gonic/gin"
)

var (
	errUploadTooLarge = errors.New("uploaded file is too large")
	errBadAnswer      = errors.New("malformed answer")
)

// HandleUpload extracts text from the uploaded PDF (multipart field "file").
// The optional "num_pages" field selects how many pages feed generation.
func (h *Handler) HandleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(c)

	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadFailed(c, fmt.Errorf("%w (limit %d bytes)", errUploadTooLarge, tooLarge.Limit))
			return
		}
		h.uploadFailed(c, study.ErrNoFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.uploadFailed(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.uploadFailed(c, fmt.Errorf("read uploaded file: %w", err))
		return
	}

	numPages, _ := strconv.Atoi(c.PostForm("num_pages"))
	st, err := h.Study.Upload(ctx, id, fileHeader.Filename, data, numPages)
	h.respond(c, st, err, "")
}

func (h *Handler) uploadFailed(c *gin.Context, err error) {
	st, _ := h.Study.State(c.Request.Context(), sessionID(c))
	h.respond(c, st, err, "")
}

// HandleSettings updates the page and question selectors.
func (h *Handler) HandleSettings(c *gin.Context) {
	var req models.SettingsRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respond(c, session.State{}, fmt.Errorf("%w: %v", session.ErrInvalidSetting, err), "")
		return
	}
	st, err := h.Study.UpdateSettings(c.Request.Context(), sessionID(c), req.NumPages, req.NumQuestions)
	h.respond(c, st, err, "")
}

// HandleGenerate runs the selected action against the current document.
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respond(c, session.State{}, fmt.Errorf("%w: %v", session.ErrUnknownAction, err), "")
		return
	}
	action, err := session.ParseAction(req.Action)
	if err != nil {
		h.respond(c, session.State{}, fmt.Errorf("%w %q", err, req.Action), "")
		return
	}
	st, err := h.Study.Generate(c.Request.Context(), sessionID(c), action)
	h.respond(c, st, err, "")
}

// HandleAnswer records a self-test choice for question :index.
func (h *Handler) HandleAnswer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.respond(c, session.State{}, fmt.Errorf("%w: %q", session.ErrQuestionIndex, c.Param("index")), "")
		return
	}
	var req models.AnswerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respond(c, session.State{}, fmt.Errorf("%w: %v", errBadAnswer, err), fmt.Sprintf("#q%d", index))
		return
	}

	st, res, err := h.Study.Answer(c.Request.Context(), sessionID(c), index, req.Choice)
	if err != nil || !wantsJSON(c) {
		h.respond(c, st, err, fmt.Sprintf("#q%d", index))
		return
	}
	c.JSON(http.StatusOK, models.GradeResponse{
		Index:          res.Index,
		Choice:         res.Choice,
		Outcome:        res.Outcome,
		Correct:        res.Outcome.Correct(),
		ExpectedAnswer: res.Question.ExpectedAnswer,
	})
}

// HandleDownload serves the latest questions or summary as a text file.
func (h *Handler) HandleDownload(c *gin.Context) {
	name, content, err := h.Study.Download(c.Request.Context(), sessionID(c), c.Param("kind"))
	if err != nil {
		h.respond(c, session.State{}, err, "")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// HandleReset ends the session and starts over with a fresh state.
func (h *Handler) HandleReset(c *gin.Context) {
	st, err := h.Study.Reset(c.Request.Context(), sessionID(c))
	h.respond(c, st, err, "")
}
