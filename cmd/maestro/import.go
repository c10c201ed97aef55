package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
	"github.com/clara/maestro/internal/logging"
)

var importCmd = &cobra.Command{
	Use:   "import <audio-file>",
	Short: "Import an audio file as a recording",
	Long: `Import an audio file into the local library as a recording.

Title and performer are read from the file's embedded tags when present;
flags override tag values. The file itself is copied into the local asset
store under the new recording's id.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("composer", "", "owning composer id (required)")
	importCmd.Flags().String("title", "", "recording title (default: from tags or filename)")
	importCmd.Flags().String("performer", "", "performer (default: from tags)")
	importCmd.Flags().String("duration", "", "duration, e.g. 12:30")
	importCmd.Flags().Int("year", 0, "year of the recording (default: from tags)")
	importCmd.MarkFlagRequired("composer")
}

func runImport(cmd *cobra.Command, args []string) error {
	srcPath := args[0]
	composerID, _ := cmd.Flags().GetString("composer")
	title, _ := cmd.Flags().GetString("title")
	performer, _ := cmd.Flags().GetString("performer")
	duration, _ := cmd.Flags().GetString("duration")
	year, _ := cmd.Flags().GetInt("year")

	if _, ok := assets.CategoryForPath(srcPath); !ok {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(srcPath))
	}

	tagTitle, tagPerformer, tagYear := readAudioTags(srcPath)
	if title == "" {
		title = tagTitle
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	}
	if performer == "" {
		performer = tagPerformer
	}
	if year == 0 {
		year = tagYear
	}

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

	storedPath, err := storeLocalAsset(assetStore, srcPath, assets.CategoryRecording, r.ID)
	if err != nil {
		return err
	}
	ref := library.LocalRef(storedPath)
	if _, err := db.UpdateRecording(r.ID, &library.RecordingUpdate{File: &ref}); err != nil {
		return fmt.Errorf("failed to attach file: %w", err)
	}

	fmt.Printf("Imported %s as recording %s (%s)\n", filepath.Base(srcPath), r.Title, r.ID)
	return nil
}

// readAudioTags pulls title/artist/year from the file's embedded tags.
// Missing or unreadable tags are not an error; the caller falls back to
// flags and the filename.
func readAudioTags(path string) (title, performer string, year int) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", 0
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		logging.Debug("no readable tags", zap.String("file", path), zap.Error(err))
		return "", "", 0
	}

	return m.Title(), m.Artist(), m.Year()
}
