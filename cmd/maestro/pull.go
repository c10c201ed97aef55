package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/sync"
)

var pullCmd = &cobra.Command{
	Use:   "pull <remote-composer-id>",
	Short: "Copy a remote composer subtree into the local library",
	Long: `Copy a remote composer, with all of its works and recordings, into the
local library. Assets are downloaded into the local asset directory and every
entity gets a fresh local id. The new composer's name carries a copy marker;
pull never merges with an existing local composer.

Use 'maestro remote list' to find remote composer ids.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, localAssets, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

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

	onProgress, finish := newProgressRenderer("Pulling")

	start := time.Now()
	report, err := orch.PullComposer(ctx, args[0], onProgress)
	finish()
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	printReport(report, time.Since(start))
	return nil
}
