package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/sync"
)

var pushCmd = &cobra.Command{
	Use:   "push <composer-id>",
	Short: "Copy a local composer subtree to the remote store",
	Long: `Copy a local composer, with all of its works and recordings, to the
remote store. Assets are uploaded to the remote bucket and every entity gets
a fresh remote id.

The transfer is best-effort: a single asset or record that fails to transfer
is logged and skipped, and the rest of the subtree still goes through. The
remote store is written incrementally, so a failed or interrupted push can
leave a partial composer behind; push is never destructive on either side.`,
	Args: cobra.ExactArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, localAssets, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	// Hydrate the full subtree before touching the remote side
	composer, err := db.GetComposerWithChildren(args[0])
	if err != nil {
		return err
	}

	remoteDB, bucket, err := openRemote(ctx)
	if err != nil {
		return err
	}
	defer remoteDB.Close()

	orch := sync.New(&sync.Config{
		Local:        db,
		Remote:       remoteDB,
		LocalAssets:  localAssets,
		RemoteAssets: bucket,
		Fetcher:      assets.NewFetcher(),
	})

	fmt.Printf("Pushing %s (%d works, %d recordings)\n",
		composer.Name, len(composer.Works), len(composer.Recordings))

	onProgress, finish := newProgressRenderer("Pushing")

	start := time.Now()
	report, err := orch.PushComposer(ctx, composer, onProgress)
	finish()
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	printReport(report, time.Since(start))
	return nil
}
