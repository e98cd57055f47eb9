package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/diagnosis/salvatore-shoes/internal/notify"
	"github.com/diagnosis/salvatore-shoes/internal/platform/mailer"
	"github.com/diagnosis/salvatore-shoes/pkg/config"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
)

const queueGroup = "salvatore-notifier"

func main() {
	if err := run(); err != nil {
		logger.Error("Notifier exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if cfg.NATS.URL == "" {
		return errors.New("NATS_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		return err
	}
	defer bus.Close()

	n := notify.New(mailer.FromConfig(cfg.Email), cfg.Email.ShopEmail)

	for _, subject := range []string{events.QuoteRequested, events.ContactReceived} {
		if err := bus.QueueSubscribe(subject, queueGroup, n.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}

	logger.Info("Notifier listening", "queue", queueGroup, "shop_email", cfg.Email.ShopEmail)
	<-ctx.Done()
	logger.Info("Shutting down notifier...")
	return nil
}
