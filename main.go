package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/config"
	"github.com/blogem/defect-tracker/controllers"
	"github.com/blogem/defect-tracker/database"
	"github.com/blogem/defect-tracker/metrics"
	"github.com/blogem/defect-tracker/repositories"
	"github.com/blogem/defect-tracker/routes"
	"github.com/blogem/defect-tracker/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("defect tracker stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	// Initialize database
	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	defer database.CloseDB()

	// Initialize repositories
	repos := repositories.NewRepositories(database.GetDB())

	jwtAuth, err := authenticator.NewJWTAuthenticator(cfg.JWT)
	if err != nil {
		return err
	}
	chain := authenticator.Chain{jwtAuth}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional single sign-on; ID tokens from the provider are accepted as bearer tokens too
	var sso *authenticator.OIDCAuthenticator
	if cfg.OIDC.Enabled() {
		sso, err = authenticator.NewOIDCAuthenticator(ctx, cfg.OIDC, repos.Users)
		if err != nil {
			return err
		}
		chain = append(chain, sso)
		logger.Info("oidc single sign-on enabled", slog.String("issuer", cfg.OIDC.IssuerURL))
	}

	m := metrics.New()

	// Initialize services
	srvs := services.NewServices(repos, services.Options{
		Metrics:     m,
		Tokens:      jwtAuth,
		BcryptCost:  cfg.BcryptCost,
		SeedEnabled: cfg.SeedEnabled,
	})

	// Initialize controllers
	ctrl := controllers.NewControllers(srvs, sso)

	// Set up router
	r, err := routes.SetupRouter(ctrl, routes.Options{
		Auth:     chain,
		Metrics:  m,
		Logger:   logger,
		UseHTTPS: cfg.UseHTTPS,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("err", err))
		}
	}()

	logger.Info("defect tracker starting",
		slog.String("port", cfg.Port),
		slog.String("database", cfg.DatabasePath),
		slog.Bool("seed_enabled", cfg.SeedEnabled),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
