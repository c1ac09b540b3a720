package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	outbox "github.com/vixgo/sync"
	"github.com/vixgo/sync/engine"
	"github.com/vixgo/sync/internal/netprobe"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the sync engine until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(root)
		},
	}
}

func runDaemon(root *rootOptions) error {
	store, err := openStore(root.cfg)
	if err != nil {
		return err
	}

	retry := outbox.RetryPolicy{
		MaxAttempts: root.cfg.Retry.MaxAttempts,
		BaseDelayMs: root.cfg.Retry.BaseDelayMs,
		MaxDelayMs:  root.cfg.Retry.MaxDelayMs,
		Factor:      root.cfg.Retry.Factor,
	}

	ob, err := outbox.NewOutbox(store, outbox.WithRetryPolicy(retry), outbox.WithOutboxLogger(root.logger))
	if err != nil {
		return err
	}

	probe := netprobe.New(netprobe.Config{})

	eng := engine.NewSyncEngine(engine.EngineConfig{
		WorkerCount:       root.cfg.Engine.WorkerCount,
		BatchLimit:        root.cfg.Engine.BatchLimit,
		IdleSleepMs:       root.cfg.Engine.IdleSleepMs,
		OfflineSleepMs:    root.cfg.Engine.OfflineSleepMs,
		InflightTimeoutMs: root.cfg.Engine.InflightTimeoutMs,
	}, ob, probe, nil, outbox.SystemClock{})

	root.logger.Info("starting sync engine")
	eng.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	root.logger.Info("shutting down")
	eng.Stop()

	return nil
}
