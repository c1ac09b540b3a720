package main

import (
	"fmt"

	"github.com/spf13/cobra"

	outbox "github.com/vixgo/sync"
)

func newEnqueueCommand(root *rootOptions) *cobra.Command {
	var kind, target, payload string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Enqueue one operation",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(root.cfg)
			if err != nil {
				return err
			}

			ob, err := outbox.NewOutbox(store, outbox.WithOutboxLogger(root.logger))
			if err != nil {
				return err
			}

			now := outbox.NowMillis(outbox.SystemClock{})
			id, err := ob.Enqueue(outbox.Operation{
				Kind:    kind,
				Target:  target,
				Payload: []byte(payload),
			}, now)
			if err != nil {
				return err
			}

			fmt.Println(id)

			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "routing hint interpreted by the transport")
	cmd.Flags().StringVar(&target, "target", "", "delivery destination")
	cmd.Flags().StringVar(&payload, "payload", "", "message body")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
