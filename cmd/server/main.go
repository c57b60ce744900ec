package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"educross/internal/config"
	"educross/internal/content"
	"educross/internal/database"
	"educross/internal/events"
	"educross/internal/handlers"
	"educross/internal/logger"
	"educross/internal/questions"
	"educross/internal/repository"
	"educross/internal/security"
	"educross/internal/service"
	"educross/internal/wordsearch"
)

const (
	cleanupInterval   = time.Hour
	authRate          = 10
	authWindow        = time.Minute
	shutdownTimeout   = 15 * time.Second
	limiterPruneEvery = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartup()

	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()
	log.Info("database connection established", zap.String("type", cfg.DatabaseType))
	startup.CompleteStep(handlers.StepDatabase)

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := db.SeedBadWords(ctx); err != nil {
		log.Warn("failed to seed bad words filter", zap.Error(err))
	}
	startup.CompleteStep(handlers.StepMigrations)

	startup.SetCurrentStep(handlers.StepContent)
	catalog, err := content.LoadDir(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	log.Info("content loaded", zap.Int("subjects", len(catalog.Subjects())))
	startup.CompleteStep(handlers.StepContent)

	startup.SetCurrentStep(handlers.StepServices)
	suppressed, err := questions.ParseUnitRefs(cfg.HintSuppressedUnits)
	if err != nil {
		return fmt.Errorf("HINT_SUPPRESSED_UNITS: %w", err)
	}
	overrideRepo := repository.NewOverrideRepository(db)
	bank := questions.NewBank(catalog, questions.NewGenerator(suppressed...), overrideRepo, log)

	publisher, err := events.New(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		return fmt.Errorf("connect event publisher: %w", err)
	}
	defer publisher.Close()

	emailService, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, log)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}

	authService := service.NewAuthService(db, db, emailService, cfg.SessionDuration, log)
	profileService := service.NewProfileService(db, db, emailService, publisher, log)
	scoreService := service.NewScoreService(db, catalog, publisher, log)
	backupService := service.NewBackupService(db, log)
	store := wordsearch.NewSessionStore(cfg.WordSearchTTL)

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		csrfSecret = uuid.NewString()
		log.Warn("CSRF_SECRET not set, tokens will not survive a restart")
	}
	csrf := security.NewCSRF(csrfSecret)
	limiter := security.NewRateLimiter(authRate, authWindow)

	api := handlers.NewRouter(handlers.Handlers{
		Middleware: handlers.NewMiddleware(authService, profileService, csrf, log),
		Auth:       handlers.NewAuthHandler(authService, profileService, csrf, oauthProviders(cfg), cfg.OAuthRedirectBaseURL, log),
		Content:    handlers.NewContentHandler(catalog, bank, handlers.TimeSeeded, log),
		WordSearch: handlers.NewWordSearchHandler(catalog, bank, store, scoreService, handlers.TimeSeeded, log),
		Profile:    handlers.NewProfileHandler(profileService, scoreService, log),
		Admin: handlers.NewAdminHandler(catalog, bank, overrideRepo,
			repository.NewUserRepository(db), repository.NewProfileRepository(db), repository.NewScoreRepository(db),
			backupService, log),
	}, limiter)
	startup.CompleteStep(handlers.StepServices)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", startup.Health)
	root.Handle("/", startup.RequireReady(api))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.Logging(log, root),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go limiter.Run(ctx, limiterPruneEvery)
	go cleanupExpired(ctx, log, authService, store)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	startup.MarkReady()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}

	authService.Wait()
	profileService.Wait()
	scoreService.Wait()
	return nil
}

func oauthProviders(cfg *config.Config) map[string]handlers.OAuthProvider {
	return map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Endpoint:     facebook.Endpoint,
				Scopes:       []string{"email", "public_profile"},
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: cfg.AppleClientSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{"response_mode": "query"},
		},
	}
}

// cleanupExpired periodically removes expired sessions and word-search games
func cleanupExpired(ctx context.Context, log *zap.Logger, authService *service.AuthService, store *wordsearch.SessionStore) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n, err := authService.CleanupExpiredSessions(ctx); err != nil {
				log.Error("failed to clean up expired sessions", zap.Error(err))
			} else {
				log.Info("expired sessions cleaned up", zap.Int64("removed", n))
			}
			log.Info("expired word searches cleaned up", zap.Int("removed", store.CleanupExpired(now)))
		}
	}
}
