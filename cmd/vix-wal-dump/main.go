// Command vix-wal-dump prints every record in a write-ahead log file,
// one per line, for crash-recovery debugging.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vixgo/sync/wal"
)

func newRootCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "vix-wal-dump",
		Short: "Dump a write-ahead log's records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return dump(path)
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "path to the WAL file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func dump(path string) error {
	r, err := wal.NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	count := 0
	for {
		rec, ok, err := r.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		fmt.Printf("offset=%d type=%s ts_ms=%d id=%q payload_len=%d error=%q next_retry_at_ms=%d\n",
			r.CurrentOffset(), rec.Type, rec.TsMs, rec.ID, len(rec.Payload), rec.Error, rec.NextRetryAtMs)
		count++
	}

	fmt.Fprintf(os.Stderr, "%d records\n", count)

	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
