package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitework/workforce-backend-go/internal/config"
	"github.com/sitework/workforce-backend-go/internal/pkg/cron"
	"github.com/sitework/workforce-backend-go/internal/pkg/database"
	"github.com/sitework/workforce-backend-go/internal/pkg/kafka"
	"github.com/sitework/workforce-backend-go/internal/repository/postgresql"
	outboxService "github.com/sitework/workforce-backend-go/internal/service/outbox"
)

// The worker relays committed payroll events from the outbox table to Kafka.
func main() {
	if err := run(); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	writer := kafka.NewWriter(cfg.Kafka.Brokers)
	defer writer.Close()

	relay := outboxService.NewRelay(postgresql.NewOutboxRepository(db), kafka.NewPublisher(writer))

	scheduler := cron.NewScheduler()
	scheduler.AddJob("outbox-relay", cfg.Kafka.OutboxPollInterval, relay.Job)
	scheduler.Start(ctx)
	scheduler.Wait()

	slog.Info("worker shutting down")
	return nil
}
