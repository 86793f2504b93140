package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/monocle-dev/todolist/db"
	"github.com/monocle-dev/todolist/internal/auth"
	"github.com/monocle-dev/todolist/internal/config"
	"github.com/monocle-dev/todolist/internal/handlers"
	"github.com/monocle-dev/todolist/internal/logger"
	"github.com/monocle-dev/todolist/internal/middleware"
	"github.com/monocle-dev/todolist/internal/router"
	"github.com/monocle-dev/todolist/internal/scheduler"
	"github.com/monocle-dev/todolist/internal/todo"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)

	if err != nil {
		return err
	}

	l := logger.New(cfg.Log.Level, cfg.Log.Format)

	if l.GetLevel() != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := db.ConnectDatabase(ctx, cfg.Database, l)

	if err != nil {
		return err
	}

	defer backend.Close(context.Background())

	if err := backend.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	checks := scheduler.NewScheduler(l.WithPrefix("scheduler"))
	defer checks.Stop()

	checks.AddJob(handlers.StoreCheck, 30*time.Second, 5*time.Second, backend.Ping)

	engine, err := newEngine(cfg, backend, checks, l)

	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		l.Info("server listening", "port", cfg.Port, "driver", cfg.Database.Driver, "google", cfg.Google.Enabled())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newEngine(cfg *config.Config, backend db.Backend, checks handlers.CheckStatus, l *log.Logger) (*gin.Engine, error) {
	tokens, err := auth.NewTokens(cfg.JWTSecret, auth.SessionTTL)

	if err != nil {
		return nil, err
	}

	middleware.ConfigureCookies(middleware.CookieConfig{
		Domain: cfg.Domain,
		Secure: cfg.SecureCookies,
	})

	h := &handlers.Handler{
		Todos:  todo.NewService(backend),
		Auth:   auth.NewService(backend),
		Tokens: tokens,
		Store:  backend,
		Checks: checks,
		Logger: l,
		Now:    time.Now,
	}

	if cfg.Google.Enabled() {
		h.Google = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL)
	}

	return router.NewRouter(h, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         l,
	})
}
