package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
)

var recordingCmd = &cobra.Command{
	Use:   "recording",
	Short: "Manage recordings in the local library",
}

var recordingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a recording to a local composer",
	RunE:  runRecordingAdd,
}

var recordingRmCmd = &cobra.Command{
	Use:   "rm <recording-id>",
	Short: "Delete a local recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordingRm,
}

func init() {
	rootCmd.AddCommand(recordingCmd)
	recordingCmd.AddCommand(recordingAddCmd, recordingRmCmd)

	recordingAddCmd.Flags().String("composer", "", "owning composer id (required)")
	recordingAddCmd.Flags().String("title", "", "recording title (required)")
	recordingAddCmd.Flags().String("performer", "", "performer or ensemble")
	recordingAddCmd.Flags().String("duration", "", "duration, e.g. 12:30")
	recordingAddCmd.Flags().Int("year", 0, "year of the recording")
	recordingAddCmd.Flags().String("file", "", "audio file to store")
	recordingAddCmd.MarkFlagRequired("composer")
	recordingAddCmd.MarkFlagRequired("title")
}

func runRecordingAdd(cmd *cobra.Command, args []string) error {
	composerID, _ := cmd.Flags().GetString("composer")
	title, _ := cmd.Flags().GetString("title")
	performer, _ := cmd.Flags().GetString("performer")
	duration, _ := cmd.Flags().GetString("duration")
	year, _ := cmd.Flags().GetInt("year")
	filePath, _ := cmd.Flags().GetString("file")

	db, assetStore, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.GetComposer(composerID); err != nil {
		return err
	}

	r, err := db.CreateRecording(&library.RecordingFields{
		ComposerID: composerID,
		Title:      title,
		Performer:  performer,
		Duration:   duration,
		Year:       year,
	})
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	if filePath != "" {
		storedPath, err := storeLocalAsset(assetStore, filePath, assets.CategoryRecording, r.ID)
		if err != nil {
			return err
		}
		ref := library.LocalRef(storedPath)
		if _, err := db.UpdateRecording(r.ID, &library.RecordingUpdate{File: &ref}); err != nil {
			return fmt.Errorf("failed to attach file: %w", err)
		}
	}

	fmt.Printf("Created recording %s (%s)\n", r.Title, r.ID)
	return nil
}

func runRecordingRm(cmd *cobra.Command, args []string) error {
	db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRecording(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted recording %s\n", args[0])
	return nil
}
