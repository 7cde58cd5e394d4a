package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"embedding-projector/internal/app"
	"embedding-projector/internal/httputil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	if err := run(ctx, deps); err != nil {
		deps.Log.Error("projector run failed", "err", err)
		deps.Close()
		os.Exit(1)
	}
	deps.Close()
}

func run(ctx context.Context, deps app.Deps) error {
	deps.Log.Info("projector run starting",
		"words", deps.Config.WordCount,
		"batch_size", deps.Config.BatchSize,
		"model", deps.Config.EmbeddingModel,
	)
	res, err := deps.Pipeline().Run(ctx)
	if err != nil {
		return err
	}
	deps.Log.Info("projector run finished",
		"rows", res.RowsWritten,
		"api_calls", res.APICalls,
		"failed_batches", res.FailedBatches,
	)

	if deps.Config.ServeAddr == "" {
		return nil
	}
	router := httputil.NewOutputRouter(deps.Log, deps.Config.OutputDir, res)
	return httputil.Serve(ctx, deps.Log, deps.Config.ServeAddr, router)
}
