package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sngm3741/offer-finder/api/internal/bootstrap"
	"github.com/sngm3741/offer-finder/api/internal/config"
	"github.com/sngm3741/offer-finder/api/internal/logging"
	"github.com/sngm3741/offer-finder/api/internal/server"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger, err := logging.New(*verbose)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("loaded config",
		zap.String("data_source", cfg.DataSource),
		zap.String("addr", cfg.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open data source", zap.Error(err))
	}

	app := server.New(cfg, logger, backend.Source,
		server.WithHealthCheck(backend.Health),
		server.OnShutdown(backend.Close))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return backend.Watch(gctx) })
	g.Go(func() error { return app.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Fatal("サーバーが異常終了", zap.Error(err))
	}
}
