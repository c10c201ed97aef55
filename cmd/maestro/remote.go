package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Browse the remote store",
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote composers",
	RunE:  runRemoteList,
}

var remoteShowCmd = &cobra.Command{
	Use:   "show <remote-composer-id>",
	Short: "Show a remote composer with its works and recordings",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemoteShow,
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteListCmd, remoteShowCmd)
}

func runRemoteList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openRemote(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	composers, err := db.ListComposers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list remote composers: %w", err)
	}

	if len(composers) == 0 {
		fmt.Println("No composers in the remote store.")
		return nil
	}

	for _, c := range composers {
		fmt.Printf("%-36s  %-24s  %-12s  %d works, %d recordings\n",
			c.ID, c.Name, c.Period, c.SheetMusicCount, c.RecordingCount)
	}

	return nil
}

func runRemoteShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openRemote(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.GetComposerWithChildren(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Composer: %s\n", c.Name)
	fmt.Printf("  ID:     %s\n", c.ID)
	fmt.Printf("  Period: %s\n", c.Period)
	if !c.Image.IsEmpty() {
		fmt.Printf("  Image:  %s\n", c.Image.Value)
	}

	fmt.Printf("\nWorks (%d):\n", len(c.Works))
	for _, w := range c.Works {
		fmt.Printf("  %-36s  %s", w.ID, w.Title)
		if w.Year != 0 {
			fmt.Printf(" (%d)", w.Year)
		}
		fmt.Println()
	}

	fmt.Printf("\nRecordings (%d):\n", len(c.Recordings))
	for _, r := range c.Recordings {
		fmt.Printf("  %-36s  %s", r.ID, r.Title)
		if r.Performer != "" {
			fmt.Printf(" - %s", r.Performer)
		}
		fmt.Println()
	}

	return nil
}
