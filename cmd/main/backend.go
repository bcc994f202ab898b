package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"ticker-desk/src/backend"
	"ticker-desk/src/data_source/yahoo"
	"ticker-desk/src/grpc_control"
	"ticker-desk/src/jobs"
	"ticker-desk/src/models"
	"ticker-desk/src/network"
	"ticker-desk/src/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runBackend(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup("backend")
	if err != nil {
		return err
	}
	defer log.Sync()

	if portFlag != 0 {
		cfg.Backend.Port = portFlag
	}

	ctx, stop := signalContext()
	defer stop()

	// 1. Storage
	store, err := storage.NewStockStore(cfg.MConfig, log)
	if err != nil {
		return err
	}
	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.DBType, err)
	}
	defer store.Close()

	// 2. Metadata source
	netMgr := network.NewAsyncNetworkManager(cfg.MConfig, log)
	source := yahoo.NewYahooFinanceSource(netMgr, log)

	// 3. Job queue
	queue := jobs.NewQueue(jobs.QueueConfig{
		Workers:     cfg.Backend.Workers,
		QueueSize:   cfg.Backend.QueueSize,
		MaxAttempts: cfg.Backend.MaxRetries,
		RetryDelay:  time.Duration(cfg.Backend.RetryDelaySeconds) * time.Second,
	}, log)
	queue.Register(models.JobStockFetch, jobs.NewStockFetchHandler(store, source, log))
	queue.Register(models.JobDebugPing, jobs.PingHandler)

	svc := backend.NewService(store, queue, log)
	api := backend.NewAPIServer(cfg.MConfig, svc, log)
	refresher := jobs.NewRefresher(store, queue, time.Duration(cfg.Backend.RefreshIntervalSeconds)*time.Second, log)

	// 4. Run everything until a signal or the first failure
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return queue.Run(gctx) })
	g.Go(func() error { return refresher.Run(gctx) })
	g.Go(func() error { return api.Run(gctx) })

	if cfg.Backend.GrpcPort != 0 {
		addr := fmt.Sprintf("%s:%d", cfg.Backend.GrpcHost, cfg.Backend.GrpcPort)
		lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		g.Go(func() error {
			return grpc_control.Serve(gctx, lis, grpc_control.NewControlService(svc, log))
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Info("Backend stopped")
	return nil
}
