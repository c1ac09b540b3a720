package main

import (
	"fmt"

	"github.com/spf13/cobra"

	outbox "github.com/vixgo/sync"
)

func newPruneCommand(root *rootOptions) *cobra.Command {
	var olderThanMs int64

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove Done operations older than a threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(root.cfg)
			if err != nil {
				return err
			}

			now := outbox.NowMillis(outbox.SystemClock{})
			threshold := now - olderThanMs

			removed, err := store.PruneDone(threshold)
			if err != nil {
				return err
			}

			fmt.Println(removed)

			return nil
		},
	}

	cmd.Flags().Int64Var(&olderThanMs, "older-than-ms", 24*60*60*1000, "prune Done operations last updated at least this many ms ago")

	return cmd
}
