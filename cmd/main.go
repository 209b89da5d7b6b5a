package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"alert-notifier/internal/acronis"
	"alert-notifier/internal/config"
	"alert-notifier/internal/infobip"
	"alert-notifier/internal/logging"
	"alert-notifier/internal/notification"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger)
	stop()
	_ = logger.Close()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) int {
	// Backup platform: token first, then the client reading it
	creds := acronis.NewCredentialManager(cfg.Acronis.BaseURL, cfg.Acronis.ClientID, cfg.Acronis.ClientSecret, logger)
	creds.EnsureValid(ctx)
	backup := acronis.NewClient(cfg.Acronis.BaseURL, cfg.Acronis.ClientID, cfg.HTTP.UserAgent, creds)

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if tenant, err := backup.IntegrationRootTenant(ctx); err != nil {
			logger.WithError(err).Debug("Integration tenant lookup failed")
		} else {
			logger.WithField("tenant_id", tenant).Debug("Integration root tenant")
		}
	}

	// Communications platform
	comms := infobip.NewClient(cfg)
	scenarios := infobip.NewReconciler(comms, cfg, logger)
	dispatcher := infobip.NewDispatcher(comms, scenarios, cfg, logger)

	svc := notification.New(backup, dispatcher, cfg, logger)
	if _, err := svc.Run(ctx); err != nil {
		if errors.Is(err, notification.ErrAlertsUnavailable) {
			logger.Error("Can't retrieve alerts information!")
		}
		return 1
	}
	return 0
}
