package main

import (
	"fmt"

	"github.com/spf13/cobra"

	outbox "github.com/vixgo/sync"
	"github.com/vixgo/sync/engine"
	"github.com/vixgo/sync/internal/netprobe"
)

func newTickCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Drive one manual engine tick and print the number processed",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(root.cfg)
			if err != nil {
				return err
			}

			ob, err := outbox.NewOutbox(store, outbox.WithOutboxLogger(root.logger))
			if err != nil {
				return err
			}

			probe := netprobe.New(netprobe.Config{})
			w := engine.NewSyncWorker(engine.WorkerConfig{
				BatchLimit:        root.cfg.Engine.BatchLimit,
				InflightTimeoutMs: root.cfg.Engine.InflightTimeoutMs,
			}, ob, probe, nil)
			w.WithLogger(root.logger)

			processed := w.Tick(outbox.NowMillis(outbox.SystemClock{}))
			fmt.Println(processed)

			return nil
		},
	}
}
