package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"queridodiario/internal/config"
	"queridodiario/internal/database"
	"queridodiario/internal/handlers"
	"queridodiario/internal/logging"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.MustSetup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	clientIP, err := security.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	startup := handlers.NewStartupStatus(
		handlers.StepDatabase,
		handlers.StepMigrations,
		handlers.StepServices,
		handlers.StepReady,
	)
	gate := handlers.NewGate(startup)

	// Listen first so /readyz reports progress while the database comes up
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      gate,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr), zap.String("timezone", cfg.Timezone))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	shutdown := func() error {
		logger.Info("Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}

	db, err := initialize(ctx, cfg, logger, startup, clientIP, gate)
	if db != nil {
		defer db.Close()
	}
	if err != nil {
		_ = shutdown()
		return err
	}

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	return shutdown()
}

// initialize connects the database, builds the services and opens the gate
func initialize(ctx context.Context, cfg *config.Config, logger *zap.Logger, startup *handlers.StartupStatus, clientIP *security.ClientIPResolver, gate *handlers.Gate) (*database.DB, error) {
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	startup.CompleteStep(handlers.StepDatabase)
	logger.Info("Database connection established", zap.String("type", cfg.DatabaseType))

	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(ctx); err != nil {
		return db, err
	}
	startup.CompleteStep(handlers.StepMigrations)
	if version, err := db.MigrationVersion(ctx); err == nil {
		logger.Info("Migrations completed", zap.Int64("version", version))
	}

	startup.SetCurrentStep(handlers.StepServices)
	sessions := security.NewSessionManager(cfg.SessionSecret, cfg.SessionDuration)
	authService := service.NewAuthService(repository.NewTenantRepository(db), sessions, logger)
	diaryService := service.NewDiaryService(db, logger)
	panelService := service.NewPanelService(db, cfg.Location(), logger)
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		return db, err
	}
	if !emailService.IsEnabled() {
		logger.Warn("SES_FROM_EMAIL not set, panel links cannot be shared by email")
	}

	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	loginLimiter := security.PerMinute(cfg.LoginRatePerMinute)
	panelLimiter := security.NewRateLimiter(rate.Limit(cfg.PanelRatePerSecond), cfg.PanelRatePerSecond*2)
	if len(cfg.TrustedProxies) > 0 {
		logger.Info("Honouring X-Forwarded-For from trusted proxies", zap.Strings("proxies", cfg.TrustedProxies))
	}

	oauthProviders := map[string]handlers.OAuthProvider{
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
	}

	router := handlers.NewRouter(handlers.Server{
		Middleware: handlers.NewMiddleware(authService, panelService, csrf, loginLimiter, panelLimiter, logger).TrustProxies(clientIP),
		Auth:       handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.AppBaseURL, logger),
		Admin:      handlers.NewAdminHandler(diaryService, emailService, logger),
		Panel:      handlers.NewPanelHandler(panelService, logger),
		Startup:    startup,
		DB:         db,
		Logger:     logger,
	})
	startup.CompleteStep(handlers.StepServices)

	gate.Open(router)
	logger.Info("Server ready")
	return db, nil
}
