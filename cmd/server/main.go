// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/channel"
	"github.com/unclebandit/donorlink-backend/internal/config"
	"github.com/unclebandit/donorlink-backend/internal/controller"
	"github.com/unclebandit/donorlink-backend/internal/db"
	"github.com/unclebandit/donorlink-backend/internal/handler"
	"github.com/unclebandit/donorlink-backend/internal/queue"
	"github.com/unclebandit/donorlink-backend/internal/repository"
	"github.com/unclebandit/donorlink-backend/internal/service"
)

func main() {
	zlog.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	donorRepo := &repository.DonorRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	profileRepo := &repository.ProfileRepository{DB: conn}
	secretRepo := &repository.SecretRepository{DB: conn}

	// Events go to RabbitMQ when configured, otherwise stay in-process.
	var q queue.Queue
	if cfg.RabbitMQ.URL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.RabbitMQ.URL, cfg.Retry)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		q = queue.NewInMemoryQueue(cfg.Retry)
	}

	adapter, err := channel.New(cfg, channel.LogOpener{})
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to build channel adapter")
	}

	directory := &service.DirectoryService{Donors: donorRepo, Messages: messageRepo}
	settings := &service.ProfileSettingsResolver{
		Profiles:        profileRepo,
		Secrets:         secretRepo,
		FallbackContact: cfg.Outreach.AdminContact,
		FallbackCredentials: channel.Credentials{
			Token:         cfg.WhatsApp.Token,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		},
	}

	dispatcherOpts := service.DispatcherOptions{
		MaxSelection:    cfg.Outreach.MaxSelection,
		MessageTemplate: cfg.Outreach.MessageTemplate,
		Normalizer:      channel.NewPhoneNormalizer(cfg.Outreach),
		Delayer:         service.NewDelayer(cfg.Outreach),
		Retry:           cfg.Retry,
	}
	sessions := service.NewSessionManager(ctx, directory, settings, func(r service.Reporter) *service.Dispatcher {
		reporter := service.MultiReporter{
			service.LogReporter{},
			service.QueueReporter{Queue: q, Topic: cfg.RabbitMQ.Queue},
			r,
		}
		return service.NewDispatcher(adapter, messageRepo, reporter, dispatcherOpts)
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	controller.Routes(r,
		&controller.SelectionController{Sessions: sessions},
		&controller.OutreachController{Sessions: sessions},
		handler.NewDonorHandler(directory, validator.New()),
		handler.NewSettingsHandler(settings),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Logger.Info().Str("addr", srv.Addr).Str("strategy", cfg.Outreach.Strategy).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	// ctx is already cancelled, so running jobs mark what is left as failed
	// and finish; wait for their completion events and audit updates.
	if err := sessions.Wait(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("outreach jobs did not finish before shutdown")
	}
}
