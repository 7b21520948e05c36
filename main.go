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

	"bace/config"
	"bace/db"
	"bace/handlers"
	"bace/logger"
	"bace/services"
	"bace/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Env)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}
	store := db.New(conn)

	qrImages, err := storage.NewLocal(cfg.QRDir, "/qrcodes")
	if err != nil {
		return err
	}
	uploads, err := storage.NewLocal(cfg.UploadDir, "")
	if err != nil {
		return err
	}
	documents, err := storage.NewLocal(cfg.DocumentsDir, "")
	if err != nil {
		return err
	}

	adminHash, err := services.AdminPasswordHash(cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if adminHash == nil {
		log.Warn("admin password not configured, admin login disabled")
	}

	mailer := services.NewMailer(cfg.Email)
	notifier := services.NewNotifier(mailer, qrImages, cfg.BaseURL, cfg.Email)
	slack := services.NewSlack(cfg.SlackWebhookURL)
	bg := &services.Background{}

	h := &handlers.Handler{
		Payments: services.NewPayments(store, services.NewCredentials(qrImages), notifier, slack,
			services.NewGPGGateway(cfg.Gateway), bg, cfg),
		Sessions:      services.NewSessions(store, cfg.JWTSecret, adminHash),
		Registration:  services.NewRegistration(store),
		Orders:        services.NewOrders(store, uploads, notifier, slack, bg),
		Admin:         store,
		Documents:     documents,
		WebhookSecret: cfg.Gateway.WebhookSecret,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(cfg.Features, cfg.PublicDir, cfg.QRDir),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("server starting",
		slog.String("port", cfg.Port),
		slog.String("env", cfg.Env),
		slog.String("mailer", mailer.Provider()),
		slog.Bool("slack", slack.Enabled()),
		slog.Bool("maintenance", cfg.Features.MaintenanceEnabled),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	}
	bg.Wait()
	return nil
}
