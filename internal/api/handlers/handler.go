package handlers

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strings"

	"pdfquiz/internal/logger"
	"pdfquiz/internal/models"
	"pdfquiz/internal/pdftext"
	"pdfquiz/internal/session"
	"pdfquiz/internal/study"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user.
type UserProfile struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

func init() {
	// Profiles are stored in the cookie/postgres session and need a gob type.
	gob.Register(UserProfile{})
}

// Constants for session keys - keep these consistent
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
	SessionIDKey         = "sid"

	// Context keys set by middleware.
	ContextSessionID   = "sessionID"
	ContextUserProfile = "userProfile"
)

// User-facing messages for failures the UI reports inline.
const (
	msgExtraction = "Error extracting text from PDF. Please upload a valid PDF file."
	msgNoFile     = "Please choose a PDF file to upload."
	msgTooLarge   = "The uploaded file is too large. Please upload a smaller PDF."
	msgNoDocument = "Please upload a PDF first."
	msgGeneration = "Error generating content. Please try again."
)

// Handler contains the API handlers dependencies
type Handler struct {
	Study          *study.Service
	Log            *logger.Logger
	OauthConfig    *oauth2.Config // nil when Google login is disabled
	MaxUploadBytes int64
	FrontendURL    string
}

// NewHandler creates a new Handler
func NewHandler(svc *study.Service, log *logger.Logger, oauth *oauth2.Config, maxUploadBytes int64, frontendURL string) *Handler {
	return &Handler{
		Study:          svc,
		Log:            log,
		OauthConfig:    oauth,
		MaxUploadBytes: maxUploadBytes,
		FrontendURL:    frontendURL,
	}
}

// LoginEnabled reports whether Google login routes are registered.
func (h *Handler) LoginEnabled() bool { return h.OauthConfig != nil }

// sessionID returns the ID assigned by the SessionID middleware.
func sessionID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextSessionID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// wantsJSON reports whether the client asked for a JSON response instead of
// the redirect used by the HTML forms.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, study.ErrNoFile),
		errors.Is(err, pdftext.ErrUnreadable),
		errors.Is(err, session.ErrInvalidSetting),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, study.ErrUnknownDownload),
		errors.Is(err, session.ErrQuestionIndex),
		errors.Is(err, errBadAnswer):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoDocument),
		errors.Is(err, session.ErrNoQuiz),
		errors.Is(err, study.ErrNoSummary),
		errors.Is(err, study.ErrDocumentChanged):
		return http.StatusConflict
	case errors.Is(err, errUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the text shown to the user for err.
func userMessage(err error) string {
	switch {
	case errors.Is(err, study.ErrNoFile):
		return msgNoFile
	case errors.Is(err, errUploadTooLarge):
		return msgTooLarge
	case errors.Is(err, pdftext.ErrUnreadable):
		return msgExtraction
	case errors.Is(err, session.ErrNoDocument):
		return msgNoDocument
	case statusFor(err) == http.StatusInternalServerError:
		return msgGeneration
	default:
		return err.Error()
	}
}

// respond finishes a form action: JSON clients get the new state (or the
// error), browsers are redirected back to the page with a flash message.
func (h *Handler) respond(c *gin.Context, st session.State, err error, anchor string) {
	if err != nil {
		h.Log.Warn("request failed", "path", c.FullPath(), "session_id", sessionID(c), "error", err)
	}
	if wantsJSON(c) {
		if err != nil {
			c.AbortWithStatusJSON(statusFor(err), models.ErrorResponse{Error: userMessage(err)})
			return
		}
		c.JSON(http.StatusOK, models.NewStateResponse(st))
		return
	}
	if err != nil {
		s := sessions.Default(c)
		s.AddFlash(userMessage(err))
		if saveErr := s.Save(); saveErr != nil {
			h.Log.Error("failed to save flash", "error", saveErr)
		}
	}
	c.Redirect(http.StatusSeeOther, "/"+anchor)
}
