// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/config"
	"github.com/unclebandit/donorlink-backend/internal/queue"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

func main() {
	zlog.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.RabbitMQ.URL == "" {
		zlog.Logger.Fatal().Msg("RABBITMQ_URL is required for the worker")
	}

	q, err := queue.NewAMQPQueue(cfg.RabbitMQ.URL, cfg.Retry)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer q.Close()

	sink := newEventSink(service.LogReporter{})
	if err := q.Subscribe(cfg.RabbitMQ.Queue, sink.Handle); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to register consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("worker running, waiting for outreach events...")
	<-ctx.Done()
	zlog.Logger.Info().Msg("worker shutting down")
}
