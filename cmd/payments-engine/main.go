package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/congo-pay/payments-engine/internal/audit"
	"github.com/congo-pay/payments-engine/internal/config"
	"github.com/congo-pay/payments-engine/internal/infra"
	"github.com/congo-pay/payments-engine/internal/ledger"
	"github.com/congo-pay/payments-engine/internal/logging"
	"github.com/congo-pay/payments-engine/internal/notification"
	"github.com/congo-pay/payments-engine/internal/records"
	"github.com/congo-pay/payments-engine/internal/report"
	"github.com/congo-pay/payments-engine/internal/snapshot"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: payments-engine <transactions.csv>")
		return 1
	}

	writer, err := report.New(cfg.ReportFormat)
	if err != nil {
		fmt.Fprintf(stderr, "report format: %v\n", err)
		return 1
	}

	runID := uuid.New()
	logger := logging.NewWithWriter(cfg.LogLevel, stderr).With("app", cfg.AppName, "run_id", runID.String())

	f, err := os.Open(args[0])
	if err != nil {
		logger.Error("open input", "path", args[0], "error", err)
		return 1
	}
	defer f.Close()

	chain := audit.NewChain(false)
	notifier := notification.NewLoggerNotifier(logger)
	engine := ledger.NewEngine(logger,
		ledger.WithObserver(chain.Observe),
		ledger.WithObserver(notification.LockObserver(ctx, notifier, logger)),
	)

	stats, err := engine.Replay(ctx, records.NewReader(f))
	if err != nil {
		logger.Error("replay transactions", "path", args[0], "error", err)
		return 1
	}

	rows := report.Rows(engine.Accounts())
	out := bufio.NewWriter(stdout)
	if err := writer.Write(out, rows); err != nil {
		logger.Error("write report", "error", err)
		return 1
	}
	if err := out.Flush(); err != nil {
		logger.Error("flush report", "error", err)
		return 1
	}

	logger.Info("replay complete",
		"decoded", stats.Decoded,
		"applied", stats.Applied,
		"malformed", stats.Malformed,
		"rejected", stats.Rejected,
		"accounts", len(rows),
		"digest", chain.Digest(),
	)

	if cfg.ExportEnabled() {
		if err := export(ctx, cfg, logger, runID, rows); err != nil {
			logger.Error("export snapshot", "error", err)
			return 1
		}
	}

	return 0
}

func export(ctx context.Context, cfg config.Config, logger *slog.Logger, runID uuid.UUID, rows []report.Row) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout)
	defer cancel()

	var sinks snapshot.Multi

	if cfg.DatabaseURL != "" {
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			return err
		}
		defer db.Close()
		sinks = append(sinks, snapshot.NewPostgresSink(db))
	}

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL, cfg.AppName)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		sinks = append(sinks, snapshot.NewRedisSink(cache, cfg.RedisKeyPrefix, cfg.SnapshotTTL))
	}

	if err := sinks.Save(ctx, runID, rows); err != nil {
		return err
	}
	logger.Info("snapshot exported", "sinks", len(sinks), "accounts", len(rows))
	return nil
}
