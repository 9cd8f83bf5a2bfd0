package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentAMQP)
	logger.Info("Starting fintrack-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the event worker")
		os.Exit(1)
	}

	seen, err := worker.LoadEventIDs(cfg.EventJournalPath)
	if err != nil {
		logger.Error("Failed to read event journal", log.FieldPath, cfg.EventJournalPath, log.FieldError, err)
		os.Exit(1)
	}

	journal, err := worker.OpenJournal(cfg.EventJournalPath)
	if err != nil {
		logger.Error("Failed to open event journal", log.FieldPath, cfg.EventJournalPath, log.FieldError, err)
		os.Exit(1)
	}
	defer journal.Close()

	logger.Info("Event journal ready", log.FieldPath, cfg.EventJournalPath, "entries", len(seen))

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	journalWorker := worker.NewJournalWorker(journal, seen)
	err = amqpClient.ConsumeTransactionEvents(ctx, journalWorker.HandleTransactionEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", log.FieldError, err)
		stop()
		journal.Close()
		amqpClient.Close()
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete",
		"processed", journalWorker.Processed(),
		"skipped", journalWorker.Skipped())
}
