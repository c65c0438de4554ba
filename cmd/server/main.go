package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/supportly/backend/docs"
	"github.com/supportly/backend/internal/audit"
	"github.com/supportly/backend/internal/config"
	"github.com/supportly/backend/internal/database"
	"github.com/supportly/backend/internal/gateway"
	"github.com/supportly/backend/internal/handlers"
	"github.com/supportly/backend/internal/logger"
	mW "github.com/supportly/backend/internal/middleware"
	"github.com/supportly/backend/internal/services"
)

// @title Supportly API
// @version 1.0
// @description Creator support platform: accounts, posts, donations and payment gateway reconciliation
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		l := logger.New("production")
		l.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.New(cfg.Env)

	docs.SwaggerInfo.Title = "Supportly API"
	docs.SwaggerInfo.Description = "Creator support platform: accounts, posts, donations and payment gateway reconciliation"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	redisClient := database.OpenRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditLogger := audit.NewAuditLogger(log)

	accountService := services.NewAccountService(db, log)
	ledgerService := services.NewSupportLedgerService(db, log)
	authService := services.NewAuthService(accountService, redisClient, cfg.JWT, cfg.Argon2, log)
	postService := services.NewPostService(db, log)
	qrService := services.NewQRService(accountService, cfg.FrontendURL)
	donationService := services.NewDonationService(accountService, ledgerService, auditLogger, log)
	paymentService := services.NewPaymentService(
		accountService,
		ledgerService,
		gateway.NewSnapGateway(cfg.Midtrans, log),
		gateway.NewSignatureVerifier(cfg.Midtrans.ServerKey),
		redisClient,
		auditLogger,
		cfg.Midtrans,
		cfg.Payment,
		log,
	)
	captionService := services.NewCaptionService(cfg.OpenAI, &http.Client{Timeout: cfg.OpenAI.Timeout}, log)
	if !captionService.Enabled() {
		log.Warn().Msg("OPENAI_API_KEY not set, caption generation disabled")
	}

	checks := map[string]handlers.Check{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	dev := cfg.IsDevelopment()
	router := handlers.NewRouter(handlers.RouterConfig{
		Log:            log,
		AllowedOrigins: []string{cfg.FrontendURL},
		StaticDir:      cfg.StaticDir,
		Auth:           mW.Auth(authService, accountService, log),
	}, handlers.Handlers{
		Users:    handlers.NewUserHandler(authService, accountService, log, dev),
		QR:       handlers.NewQRHandler(qrService, log, dev),
		Posts:    handlers.NewPostHandler(postService, log, dev),
		Support:  handlers.NewSupportHandler(donationService, ledgerService, log, dev),
		Payments: handlers.NewPaymentHandler(paymentService, log, dev),
		AI:       handlers.NewAIHandler(captionService, log, dev),
		Health:   handlers.NewHealthHandler(checks),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	log.Info().Msg("Server stopped")
}
