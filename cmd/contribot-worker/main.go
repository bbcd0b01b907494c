package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"contribot/internal/amqp"
	"contribot/internal/cli"
	"contribot/internal/config"
	apphttp "contribot/internal/http"
	"contribot/internal/log"
	gsheet "contribot/internal/sheets/google"
	"contribot/internal/storage"
	"contribot/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(boot, (*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting contribot-worker",
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.GoogleSpreadsheetID)

	ctx, stop := cli.GracefulShutdown(logger)
	defer stop()

	// The worker reads the same database file the bot writes.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, storage.WithLocation(cfg.Location()))
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		repo.Close()
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		repo.Close()
		os.Exit(1)
	}

	w := worker.NewMirrorWorker(repo, sheetsClient)
	if err := w.Prepare(ctx); err != nil {
		// Appends still work without a header row.
		logger.Error("Failed to prepare mirror sheet", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeContributionRecorded(gctx, w.HandleContributionRecorded)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.KeepAlive {
		srv := apphttp.NewServer(":"+cfg.Port, repo, logger.WithComponent(log.ComponentHTTP))
		g.Go(func() error { return srv.Run(gctx) })
	}

	runErr := g.Wait()
	if runErr != nil {
		logger.Error("Message consumption failed", "error", runErr)
	}

	if err := cli.Cleanup(logger, 30*time.Second, amqpClient.Close, repo.Close); err != nil || runErr != nil {
		os.Exit(1)
	}
}
