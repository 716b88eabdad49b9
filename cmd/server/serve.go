package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdfquiz/internal/api"
	"pdfquiz/internal/api/handlers"
	"pdfquiz/internal/config"
	"pdfquiz/internal/db"
	"pdfquiz/internal/generate"
	"pdfquiz/internal/logger"
	"pdfquiz/internal/notify"
	"pdfquiz/internal/r2"
	"pdfquiz/internal/session"
	"pdfquiz/internal/study"

	sessions "github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib" // Import pgx driver for database/sql
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const storeName = "pdfquiz_session"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().String("session-backend", "", "memory, postgres or redis (overrides SESSION_BACKEND)")
	cmd.Flags().String("provider", "", "gemini, openai or local (overrides GENERATOR_PROVIDER)")
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	if err := config.LoadDotEnv(files...); err != nil {
		return nil, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("port"); v != "" {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetString("session-backend"); v != "" {
		cfg.SessionBackend = v
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.GeneratorProvider = v
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	// Set up context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStateStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	gen, genCloser, err := generate.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize %s generator: %w", cfg.GeneratorProvider, err)
	}
	defer genCloser.Close()
	log.Info("generator ready", "provider", cfg.GeneratorProvider)

	var r2Client *r2.Client
	if cfg.R2Enabled() {
		r2Client, err = r2.NewClient(ctx, r2.Config{
			AccountID:       cfg.CloudflareAccountID,
			BucketName:      cfg.R2BucketName,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			PublicURL:       cfg.R2PublicURL,
		}, log)
		if err != nil {
			return fmt.Errorf("initialize R2 client: %w", err)
		}
	} else {
		log.Info("artifact archiving disabled, R2 is not configured")
	}

	discord := notify.NewDiscord(cfg.DiscordWebhookURL, log)
	defer discord.Wait()

	svc := study.NewService(store, gen, log,
		study.WithArchive(r2Client),
		study.WithNotifier(discord),
	)

	var oauthConfig *oauth2.Config
	if cfg.GoogleLoginEnabled() {
		oauthConfig = &oauth2.Config{
			RedirectURL:  cfg.GoogleRedirectURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
		log.Info("google login enabled")
	}

	cookieStore, closeCookieStore, err := newCookieStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeCookieStore()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := handlers.NewHandler(svc, log, oauthConfig, cfg.MaxUploadMB<<20, cfg.FrontendURL)
	router, err := api.NewRouter(api.RouterConfig{
		Handler:      handler,
		SessionStore: cookieStore,
		SessionName:  storeName,
		FrontendURL:  cfg.FrontendURL,
		Log:          log,
	})
	if err != nil {
		return err
	}

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "session_backend", cfg.SessionBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}
	log.Info("shutting down server")

	// Give server 5 seconds to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}

// newStateStore builds the session.Store selected by SESSION_BACKEND and
// starts its expiry sweeper.
func newStateStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func(), error) {
	switch cfg.SessionBackend {
	case "postgres":
		database, err := db.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		st := db.NewSessionStore(database, cfg.SessionTTL)
		go sweep(ctx, time.Hour, func() {
			n, err := st.DeleteExpired(ctx)
			if err != nil {
				log.Warn("failed to delete expired sessions", "error", err)
				return
			}
			if n > 0 {
				log.Info("deleted expired sessions", "count", n)
			}
		})
		return st, database.Close, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
		}
		return session.NewRedisStore(rdb, cfg.SessionTTL), func() { _ = rdb.Close() }, nil
	default:
		st := session.NewMemoryStore(cfg.SessionTTL)
		go sweep(ctx, 10*time.Minute, func() {
			if n := st.Sweep(); n > 0 {
				log.Debug("swept expired sessions", "count", n)
			}
		})
		return st, func() {}, nil
	}
}

func sweep(ctx context.Context, every time.Duration, fn func()) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}

// newCookieStore returns the gin-contrib session store that carries the
// session ID and login profile. With a DATABASE_URL it is backed by
// Postgres, otherwise by a signed cookie.
func newCookieStore(cfg *config.Config, log *logger.Logger) (sessions.Store, func(), error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		if cfg.IsProduction() {
			return nil, nil, errors.New("SESSION_SECRET must be set in production")
		}
		log.Warn("SESSION_SECRET is not set; using a random key, sessions will not survive a restart")
		secret = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, secret); err != nil {
			return nil, nil, fmt.Errorf("generate session secret: %w", err)
		}
	}

	options := sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		Secure:   cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.DatabaseURL == "" {
		store := cookie.NewStore(secret)
		store.Options(options)
		return store, func() {}, nil
	}

	// Create a standard sql.DB connection pool specifically for the session store
	// using the pgx driver via the stdlib adapter.
	sessionDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection for session store: %w", err)
	}
	if err := sessionDB.Ping(); err != nil {
		_ = sessionDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database for session store: %w", err)
	}
	store, err := gsessions.NewStore(sessionDB, secret)
	if err != nil {
		_ = sessionDB.Close()
		return nil, nil, fmt.Errorf("failed to create postgres session store: %w", err)
	}
	store.Options(options)
	return store, func() { _ = sessionDB.Close() }, nil
}
