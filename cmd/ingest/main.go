// Command ingest loads invoice and methanol price CSV exports, then
// recomputes derived rows and invalidates report caches.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/salespulse/salespulse/internal/app"
	"github.com/salespulse/salespulse/internal/classify"
	"github.com/salespulse/salespulse/internal/ingest"
	"github.com/salespulse/salespulse/internal/platform/cache"
	"github.com/salespulse/salespulse/internal/platform/db"
	"github.com/salespulse/salespulse/internal/reports"
	"github.com/salespulse/salespulse/jobs"
)

func main() {
	invoicesPath := flag.String("invoices", "", "Path to the sales invoice CSV export")
	pricesPath := flag.String("prices", "", "Path to the methanol price CSV (Date,Price)")
	skipDerive := flag.Bool("skip-derive", false, "Skip the derive recompute after upload")
	async := flag.Bool("async", false, "Enqueue the derive recompute instead of running it inline")
	flag.Parse()

	if *invoicesPath == "" && *pricesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest [-invoices file.csv] [-prices file.csv] [-skip-derive]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	svc := ingest.NewService(ingest.NewRepository(pool), logger)

	if *invoicesPath != "" {
		if err := ingestFile(ctx, *invoicesPath, svc.IngestInvoices); err != nil {
			logger.Error("ingest invoices", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if *pricesPath != "" {
		if err := ingestFile(ctx, *pricesPath, svc.IngestMethanolPrices); err != nil {
			logger.Error("ingest prices", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if *skipDerive {
		return
	}

	if *async {
		client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		info, err := client.EnqueueDeriveRecompute(ctx, jobs.DeriveRecomputePayload{})
		if err != nil {
			logger.Error("enqueue derive recompute", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("derive recompute enqueued", slog.String("task_id", info.ID))
		return
	}

	classifyService := classify.NewService(classify.NewRepository(pool), logger)
	processed, err := classifyService.Recompute(ctx)
	if err != nil {
		logger.Error("derive recompute", slog.Int("processed", processed), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("derive recompute done", slog.Int("processed", processed))

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("connect redis, skipping cache bump", slog.Any("error", err))
		return
	}
	defer func() { _ = redisClient.Close() }()
	if err := reports.NewCache(redisClient, cfg.CacheTTL).Bump(ctx); err != nil {
		logger.Warn("report cache bump", slog.Any("error", err))
	}
}

func ingestFile(ctx context.Context, path string, fn func(context.Context, io.Reader) (ingest.Summary, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fn(ctx, f)
	return err
}
