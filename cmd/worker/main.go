package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/osint/internal/queue"
	"github.com/OFFIS-RIT/osint/internal/storage"
	"github.com/OFFIS-RIT/osint/internal/util"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/logger/console"

	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	util.LoadEnv()
	cfg := util.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		JSON:   cfg.LogJSON,
		Prefix: "worker",
	})
	logger.Init(consoleLogger)

	client, err := util.NewResearchClient(cfg)
	if err != nil {
		logger.Fatal("Could not create research client", "err", err)
	}

	reports, locker, err := storage.OpenReportStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Unable to open report store", "err", err)
	}
	defer reports.Close()

	archive, _, err := storage.OpenArchive(ctx, cfg)
	if err != nil {
		logger.Fatal("Unable to create S3 client", "err", err)
	}

	// Init rabbitmq
	conn, err := queue.Init()
	if err != nil {
		logger.Fatal("Unable to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.RunQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	processor := &queue.Processor{
		Client:  client,
		Store:   reports,
		Locker:  locker,
		Archive: archive,
		Channel: ch,
	}

	// Prefetch bounds how many runs this worker holds at once.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	err = consumerCh.Qos(cfg.ParallelRuns, 0, false)
	if err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.RunQueue,
		fmt.Sprintf("%s_consumer", queue.RunQueue),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.RunQueue, "err", err)
	}

	logger.Info("Listening for messages", "queue", queue.RunQueue, "parallel", cfg.ParallelRuns)

	sem := make(chan struct{}, max(cfg.ParallelRuns, 1))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, waiting for running jobs")
			for range cap(sem) {
				sem <- struct{}{}
			}
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed", "queue", queue.RunQueue)
				return
			}
			sem <- struct{}{}
			go func(msg amqp.Delivery) {
				defer func() { <-sem }()
				handle(ctx, processor, consumerCh, msg)
			}(msg)
		}
	}
}

func handle(ctx context.Context, processor *queue.Processor, ch *amqp.Channel, msg amqp.Delivery) {
	startTime := time.Now()
	logger.Info("Received message", "queue", queue.RunQueue)

	if err := processor.ProcessRunMessage(ctx, msg.Body); err != nil {
		logger.Error("Error processing message", "queue", queue.RunQueue, "err", err)
		queue.HandleProcessingError(ch, msg, queue.RunQueue, err)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to ack message", "err", err)
	}

	processingDuration := time.Since(startTime)
	hours := int(processingDuration.Hours())
	minutes := int(processingDuration.Minutes()) % 60
	seconds := int(processingDuration.Seconds()) % 60
	logger.Info(
		"Message processed successfully",
		"queue", queue.RunQueue,
		"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
	)
}
