package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Manage sheet music in the local library",
}

var workAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a work to a local composer",
	RunE:  runWorkAdd,
}

var workRmCmd = &cobra.Command{
	Use:   "rm <work-id>",
	Short: "Delete a local work",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkRm,
}

func init() {
	rootCmd.AddCommand(workCmd)
	workCmd.AddCommand(workAddCmd, workRmCmd)

	workAddCmd.Flags().String("composer", "", "owning composer id (required)")
	workAddCmd.Flags().String("title", "", "work title (required)")
	workAddCmd.Flags().String("edition", "", "edition, e.g. Urtext")
	workAddCmd.Flags().Int("year", 0, "year of composition")
	workAddCmd.Flags().String("file", "", "sheet music file to store")
	workAddCmd.MarkFlagRequired("composer")
	workAddCmd.MarkFlagRequired("title")
}

func runWorkAdd(cmd *cobra.Command, args []string) error {
	composerID, _ := cmd.Flags().GetString("composer")
	title, _ := cmd.Flags().GetString("title")
	edition, _ := cmd.Flags().GetString("edition")
	year, _ := cmd.Flags().GetInt("year")
	filePath, _ := cmd.Flags().GetString("file")

	db, assetStore, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	// Reject unknown composer ids up front
	if _, err := db.GetComposer(composerID); err != nil {
		return err
	}

	w, err := db.CreateWork(&library.WorkFields{
		ComposerID: composerID,
		Title:      title,
		Edition:    edition,
		Year:       year,
	})
	if err != nil {
		return fmt.Errorf("failed to create work: %w", err)
	}

	if filePath != "" {
		storedPath, err := storeLocalAsset(assetStore, filePath, assets.CategorySheet, w.ID)
		if err != nil {
			return err
		}
		ref := library.LocalRef(storedPath)
		if _, err := db.UpdateWork(w.ID, &library.WorkUpdate{File: &ref}); err != nil {
			return fmt.Errorf("failed to attach file: %w", err)
		}
	}

	fmt.Printf("Created work %s (%s)\n", w.Title, w.ID)
	return nil
}

func runWorkRm(cmd *cobra.Command, args []string) error {
	db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteWork(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted work %s\n", args[0])
	return nil
}
