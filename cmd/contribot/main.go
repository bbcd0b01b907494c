package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"contribot/internal/amqp"
	"contribot/internal/backend"
	"contribot/internal/cli"
	"contribot/internal/config"
	"contribot/internal/conversation"
	"contribot/internal/export"
	apphttp "contribot/internal/http"
	"contribot/internal/log"
	"contribot/internal/proofs"
	"contribot/internal/services"
	"contribot/internal/telegram"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(boot, (*config.Config).ValidateBot)
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting contribot",
		"data_backend", cfg.DataBackend,
		"proof_backend", cfg.ProofBackend,
		"keep_alive", cfg.KeepAlive,
		"time_zone", cfg.TimeZone)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).Create(cfg)
	if err != nil {
		logger.Error("Failed to initialize record store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	proofStore, closeProofs, err := proofs.FromConfig(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize proof store", "error", err, "backend", cfg.ProofBackend)
		os.Exit(1)
	}

	// Mirroring is optional; the bot works without a broker.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, contributions will not be mirrored", "error", err)
		} else {
			publisher = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewContributionService(result.Store, publisher, logger.WithComponent(log.ComponentContribution))

	machine := conversation.New(svc, proofs.NewSaver(proofStore, cfg.Location()), conversation.Config{
		BotName: cfg.BotDisplayName,
		Years:   cfg.Years,
		Logger:  logger.WithComponent(log.ComponentConversation).Logger,
	})

	exporter := export.New(result.Store, cfg.AdminUserIDs, cfg.ExportDir)

	tg, err := telegram.New(telegram.Config{
		Token:  cfg.TelegramToken,
		Debug:  cfg.TelegramDebug,
		Client: &http.Client{Timeout: cfg.DownloadTimeout},
	}, machine, exporter, logger.WithComponent(log.ComponentTelegram))
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tg.Start(gctx) })
	if cfg.KeepAlive {
		srv := apphttp.NewServer(":"+cfg.Port, result.Store, logger.WithComponent(log.ComponentHTTP))
		g.Go(func() error { return srv.Run(gctx) })
	}

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Service stopped with error", "error", runErr)
	}

	if err := cli.Cleanup(logger, 10*time.Second, svc.Close, closeProofs, result.Cleanup); err != nil || (runErr != nil && !errors.Is(runErr, context.Canceled)) {
		os.Exit(1)
	}
}
