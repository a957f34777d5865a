// Package main is the entry point for the reconciliation worker. It consumes
// queued webhook jobs, normalizes them into canonical events and settles them
// against the ledger.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kolo/internal/config"
	"kolo/internal/events"
	"kolo/internal/fees"
	"kolo/internal/ledger"
	"kolo/internal/models"
	"kolo/internal/notification"
	"kolo/internal/queue"
	"kolo/internal/reconcile"
	"kolo/internal/repositories"
	"kolo/internal/worker"
)

func main() {
	config.LoadEnv()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := repositories.Open()
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}

	schedule := fees.NewSchedule(map[string]fees.Rate{
		models.TransactionTypeFundWallet: {
			Bps: int64(config.GetIntEnv("FEE_FUND_WALLET_BPS", 100)),
			Cap: int64(config.GetIntEnv("FEE_FUND_WALLET_CAP", 10000)),
		},
	})

	engine := reconcile.NewEngine(
		ledger.New(db),
		repositories.NewVirtualAccounts(db),
		repositories.NewUsers(db),
		notification.NewService(zlog),
		schedule,
		zlog,
	)
	processor := worker.NewProcessor(events.DefaultRegistry(), engine, zlog)

	consumer, err := queue.NewConsumer(
		config.AMQPURL(),
		config.GetIntEnv("WEBHOOK_MAX_RETRIES", 5),
		config.GetDurationEnv("WEBHOOK_JOB_TIMEOUT", 30*time.Second),
		zlog,
	)
	if err != nil {
		zlog.Fatal("connect broker", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := config.GetIntEnv("WEBHOOK_WORKERS", 4)
	zlog.Info("reconciliation worker starting", zap.Int("workers", workers))
	if err := consumer.Start(ctx, workers, processor.Handle); err != nil {
		zlog.Fatal("consumer stopped", zap.Error(err))
	}

	<-ctx.Done()
	zlog.Info("shutting down")
}
