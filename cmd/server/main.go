package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/cache"
	"github.com/alextreichler/embroiderystore/internal/config"
	"github.com/alextreichler/embroiderystore/internal/files"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/handlers"
	"github.com/alextreichler/embroiderystore/internal/metrics"
	"github.com/alextreichler/embroiderystore/internal/retry"
	"github.com/alextreichler/embroiderystore/internal/session"
	"github.com/alextreichler/embroiderystore/internal/store"
)

func main() {
	// Configure slog to output DEBUG level messages
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB (content pages, FAQ, download log)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3. Backend client with the category cache
	ctx := context.Background()
	categoryCache := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, categoryCache, cfg.CategoryCacheTTL)

	// 4. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	sessionStore.Options.MaxAge = 7 * 24 * 3600
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}
	sessionManager := session.NewManager(sessionStore)

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	base := &handlers.Base{
		API:          client,
		Sessions:     sessionManager,
		SessionStore: sessionStore,
		Templates:    templates,
	}
	fetcher := files.NewHTTPFetcher(cfg.UploadTimeout)
	server := &handlers.Server{
		Home: &handlers.HomeHandler{Base: base},
		Download: &handlers.DownloadHandler{
			Base:    base,
			Store:   db,
			Fetcher: fetcher,
			// The browser spaces the fallback downloads, see downloads.html.
			Dispatcher: files.NewDispatcher(fetcher, 0),
			Delay:      cfg.DownloadDelay,
		},
		Content: &handlers.ContentHandler{Base: base, Store: db},
		Auth:    &handlers.AuthHandler{Base: base, PublicBaseURL: cfg.PublicBaseURL},
		Account: &handlers.AccountHandler{Base: base},
		Admin: &handlers.AdminHandler{
			Base:          base,
			Store:         db,
			MaxPayload:    cfg.MaxPayloadMB * forms.MB,
			UploadTimeout: cfg.UploadTimeout,
			Retry:         retry.Default,
		},
		StaticDir: cfg.StaticDir,
		Limiter:   handlers.NewRateLimiter(2 * time.Second),
	}
	mux := server.Routes()

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		// Trust local development origins
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Session -> Metrics -> Mux
	// Metrics sits next to the mux to see the matched pattern.
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(
				handlers.SessionMiddleware(sessionManager)(
					metrics.Middleware(mux),
				),
			),
		),
	)

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
