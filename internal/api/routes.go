package api

import (
	"fmt"

	"pdfquiz/internal/api/handlers"
	"pdfquiz/internal/api/web"
	"pdfquiz/internal/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the page and API routes. The session middleware must
// already be installed on router.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, frontendURL string, log *logger.Logger) {
	router.Use(RequestLogger(log))
	router.Use(CORSMiddleware(frontendURL))
	router.Use(SessionID(log))

	app := router.Group("/")
	if handler.LoginEnabled() {
		// --- Public Auth Routes ---
		router.GET("/login", handler.HandleGoogleLogin)
		router.GET("/auth/google/callback", handler.HandleGoogleCallback)
		router.GET("/api/auth/status", handler.HandleAuthStatus)

		app.Use(AuthRequired(log))
		app.POST("/logout", handler.HandleLogout)
	}

	// --- Page Routes ---
	app.GET("/", handler.HandleIndex)
	app.POST("/upload", handler.HandleUpload)
	app.POST("/settings", handler.HandleSettings)
	app.POST("/generate", handler.HandleGenerate)
	app.POST("/quiz/:index/answer", handler.HandleAnswer)
	app.GET("/download/:kind", handler.HandleDownload)
	app.POST("/session/reset", handler.HandleReset)

	// --- API Routes ---
	api := app.Group("/api")
	{
		api.GET("/state", handler.HandleGetState)
		api.GET("/quiz", handler.HandleGetQuiz)
		api.POST("/quiz/parse", handler.HandleParseQuiz)
		api.POST("/quiz/grade", handler.HandleGradeQuiz)
	}
}

// RouterConfig describes everything NewRouter wires together.
type RouterConfig struct {
	Handler      *handlers.Handler
	SessionStore sessions.Store
	SessionName  string
	FrontendURL  string
	Log          *logger.Logger
}

// NewRouter builds the gin engine with templates, sessions and routes.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(tmpl)
	if cfg.Handler.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.Handler.MaxUploadBytes
	}
	router.Use(sessions.Sessions(cfg.SessionName, cfg.SessionStore))

	SetupRoutes(router, cfg.Handler, cfg.FrontendURL, cfg.Log)
	return router, nil
}
