package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notekeeper/cmd/internal/config"
	"notekeeper/cmd/internal/domain/sqlite"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/http/handler"
	authmw "notekeeper/cmd/internal/http/middleware"
	"notekeeper/cmd/internal/infrastructure/mailer"
	"notekeeper/cmd/internal/routes"
	"notekeeper/cmd/internal/security"
	"notekeeper/cmd/internal/service"
	"notekeeper/cmd/internal/service/jobs"
	"notekeeper/cmd/internal/utils/uid"
	"notekeeper/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

const appName = "Notes"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads env vars depending on environment
	if err := config.LoadEnv(ctx); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	uid.Init(cfg.MachineID)
	validate := validators.New()

	// Init SQLite
	db := sqlite.NewManager(cfg.DatabasePath)
	if err := db.Open(); err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	sender, err := newSender(cfg)
	if err != nil {
		log.Fatalf("failed to init mailer: %v", err)
	}

	// Repos
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// Services
	sessions := security.NewSessionIssuer(cfg.TokenSecret, cfg.SessionTTL)
	userService := service.NewUserService(userRepo, service.NewTokenService(userRepo), sender, sessions, validate)
	noteService := service.NewNoteService(noteRepo, validate)

	// Jobs
	go jobs.NewTokenCleaner(userRepo, cfg.TokenSweepInterval).Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(cfg.LogLevel)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.Domain},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("1M"))

	routes.Register(e, &routes.Handlers{
		Notes:   handler.NewNoteDefault(noteService),
		Users:   handler.NewUserDefault(userService),
		Util:    handler.NewUtilRoute(db),
		Session: authmw.NewSessionMiddleware(&authmw.SessionMiddlewareConfig{Auth: userService}),
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

// newSender picks the SMTP transport when a host is configured and falls
// back to logging emails otherwise.
func newSender(cfg *config.Config) (*mailer.Sender, error) {
	renderer, err := mailer.NewRenderer(cfg.Domain, appName)
	if err != nil {
		return nil, err
	}

	var transport mailer.Transport = mailer.LogTransport{}
	if cfg.SMTPHost != "" {
		transport, err = mailer.NewSMTPTransport(mailer.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			FromName:    cfg.FromName,
			FromAddress: cfg.FromAddress,
			RequireTLS:  cfg.Production,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("SMTP_HOST not set, emails will only be logged")
	}

	policy := mailer.RetryPolicy{MaxAttempts: cfg.MailMaxAttempts, Delay: cfg.MailRetryDelay}
	return mailer.NewSender(transport, renderer, policy), nil
}
