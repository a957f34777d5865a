// Package main is the entry point for the webhook gateway. It terminates
// provider callbacks: verify, audit, enqueue, respond. All settlement happens
// in the worker binary.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"kolo/internal/config"
	"kolo/internal/events"
	"kolo/internal/queue"
	"kolo/internal/repositories"
	"kolo/internal/repositories/cache"
	"kolo/internal/webhook"
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

	producer, err := queue.NewProducer(config.AMQPURL())
	if err != nil {
		zlog.Fatal("connect broker", zap.Error(err))
	}
	defer producer.Close()

	redisClient := cache.NewRedisClient(cache.RedisConfigFromEnv())
	defer redisClient.Close()

	// Redis is optional: when it is down the deduper fails open and the
	// state-guarded reconciliation absorbs duplicates.
	var dedupe webhook.Deduper
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		zlog.Warn("redis unreachable, duplicate filter disabled", zap.Error(err))
	} else {
		dedupe = webhook.NewRedisDeduper(redisClient,
			config.GetDurationEnv("WEBHOOK_DEDUPE_TTL", 24*time.Hour), zlog)
	}
	cancel()

	gateway := webhook.NewGateway(
		webhook.DefaultVerifiers(),
		repositories.NewWebhookRecords(db),
		dedupe,
		producer,
		zlog,
	)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	for _, provider := range events.Providers() {
		app.Post("/webhooks/"+provider, gateway.Handler(provider))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	addr := ":" + config.GetEnv("PORT", "8080")
	zlog.Info("webhook gateway listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
