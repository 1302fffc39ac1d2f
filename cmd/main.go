package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/KotFed0t/bearhouse_ledger/data"
	"github.com/KotFed0t/bearhouse_ledger/data/cache"
	"github.com/KotFed0t/bearhouse_ledger/data/repository/postgres"
	"github.com/KotFed0t/bearhouse_ledger/internal/converter/moneyConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/bearhouse_ledger/internal/externalApi/quoteApi"
	"github.com/KotFed0t/bearhouse_ledger/internal/feeCalculator"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/notifier/telegramNotifier"
	"github.com/KotFed0t/bearhouse_ledger/internal/positionLedger"
	"github.com/KotFed0t/bearhouse_ledger/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/bearhouse_ledger/internal/scheduler"
	"github.com/KotFed0t/bearhouse_ledger/internal/service/basketService"
	"github.com/KotFed0t/bearhouse_ledger/internal/service/ledgerService"
	"github.com/KotFed0t/bearhouse_ledger/internal/service/marketDataService"
	"github.com/KotFed0t/bearhouse_ledger/internal/taxCalculator"
	"github.com/KotFed0t/bearhouse_ledger/internal/transport/cli"
	"github.com/google/subcommands"
)

const driveCleanupInterval = 24 * time.Hour

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	feePolicy, err := positionLedger.ParseFeePolicy(cfg.Ledger.FeePolicy)
	if err != nil {
		slog.Error("invalid ledger config", slog.String("err", err.Error()))
		return int(subcommands.ExitFailure)
	}

	pgClient, err := data.NewPostgresClient(ctx, cfg)
	if err != nil {
		slog.Error("postgres unavailable", slog.String("err", err.Error()))
		return int(subcommands.ExitFailure)
	}
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient, err := data.NewRedisClient(ctx, cfg)
	if err != nil {
		slog.Error("redis unavailable", slog.String("err", err.Error()))
		return int(subcommands.ExitFailure)
	}
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cache.ExpiryPolicyFromConfig(cfg))

	quoteApiClient := quoteApi.New(cfg, redisCache)

	var notifier interface {
		ledgerService.Notifier
		scheduler.Notifier
	} = telegramNotifier.Noop{}
	if cfg.Telegram.Token != "" {
		tgNotifier, err := telegramNotifier.New(cfg)
		if err != nil {
			slog.Error("telegram notifier disabled", slog.String("err", err.Error()))
		} else {
			notifier = tgNotifier
		}
	}

	var cloudStorage basketService.CloudStorage
	var drive *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		drive, err = googleDriveApi.New(ctx, cfg)
		if err != nil {
			slog.Error("google drive upload disabled", slog.String("err", err.Error()))
		} else {
			cloudStorage = drive
		}
	}

	reportGenerator := xslsxGenerator.New()

	ledgerSrv := ledgerService.New(pgRepo, feeCalculator.New(cfg.Ledger.ManagementFeeRate), notifier, positionLedger.Options{
		FeePolicy:     feePolicy,
		SellTolerance: cfg.Ledger.SellTolerance,
	})
	marketSrv := marketDataService.New(pgRepo, quoteApiClient, cfg.Generator.Workers)
	basketSrv := basketService.New(quoteApiClient, redisCache, reportGenerator, cloudStorage,
		taxCalculator.New(cfg.Evaluation.CorporateTaxRate), cfg.Generator.Workers, cfg.Generator.Seed)

	serve := func(ctx context.Context) error {
		sched, err := scheduler.New(notifier)
		if err != nil {
			return err
		}
		if err := sched.NewCrontabJob("refresh position prices", marketSrv.RefreshAll, cfg.Jobs.RefreshPricesCrontab, false); err != nil {
			return err
		}
		if err := sched.NewIntervalJob("sync firm assets", marketSrv.SyncAll, cfg.Jobs.SyncAssetsInterval, true); err != nil {
			return err
		}
		if drive != nil {
			if err := sched.NewIntervalJob("delete old reports", drive.DeleteOldFiles, driveCleanupInterval, false); err != nil {
				return err
			}
		}

		sched.Start()
		defer sched.Stop()
		slog.Info("scheduler started")

		// Waiting interruption signal
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	app := &cli.App{
		Ledger:        ledgerSrv,
		Market:        marketSrv,
		Baskets:       basketSrv,
		Reports:       reportGenerator,
		Money:         moneyConverter.New(cfg.Ledger.Currency),
		Serve:         serve,
		DefaultFirmID: cfg.Ledger.DefaultFirmID,
		SnapshotFile:  cfg.Generator.SnapshotFile,
		Evaluation: model.EvaluationConfig{
			InitialValue:           cfg.Evaluation.InitialValue,
			Years:                  cfg.Evaluation.Years,
			ForeignWithholdingRate: cfg.Evaluation.ForeignWithholdingRate,
			DividendGrowthRate:     cfg.Evaluation.DividendGrowthRate,
			AssetGrowthRate:        cfg.Evaluation.AssetGrowthRate,
			UseHistoricalGrowth:    cfg.Evaluation.UseHistoricalGrowth,
		},
		Out: os.Stdout,
		Err: os.Stderr,
	}

	cli.Register(subcommands.DefaultCommander, app)
	flag.Parse()

	return int(subcommands.Execute(ctx))
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
