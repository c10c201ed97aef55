package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clara/maestro/internal/assets"
	"github.com/clara/maestro/internal/library"
)

var composerCmd = &cobra.Command{
	Use:   "composer",
	Short: "Manage composers in the local library",
}

var composerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local composers",
	RunE:  runComposerList,
}

var composerShowCmd = &cobra.Command{
	Use:   "show <composer-id>",
	Short: "Show a local composer with its works and recordings",
	Args:  cobra.ExactArgs(1),
	RunE:  runComposerShow,
}

var composerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a composer to the local library",
	RunE:  runComposerAdd,
}

var composerRmCmd = &cobra.Command{
	Use:   "rm <composer-id>",
	Short: "Delete a local composer and all its works and recordings",
	Args:  cobra.ExactArgs(1),
	RunE:  runComposerRm,
}

func init() {
	rootCmd.AddCommand(composerCmd)
	composerCmd.AddCommand(composerListCmd, composerShowCmd, composerAddCmd, composerRmCmd)

	composerAddCmd.Flags().String("name", "", "composer name (required)")
	composerAddCmd.Flags().String("period", "", "musical period, e.g. Baroque")
	composerAddCmd.Flags().String("image", "", "portrait image file to store as avatar")
	composerAddCmd.MarkFlagRequired("name")
}

func runComposerList(cmd *cobra.Command, args []string) error {
	db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	composers, err := db.ListComposers()
	if err != nil {
		return fmt.Errorf("failed to list composers: %w", err)
	}

	if len(composers) == 0 {
		fmt.Println("No composers in the local library.")
		return nil
	}

	for _, c := range composers {
		marker := " "
		if !c.Image.IsEmpty() {
			marker = "*"
		}
		fmt.Printf("%s  %-36s  %-24s  %s\n", marker, c.ID, c.Name, c.Period)
	}

	return nil
}

func runComposerShow(cmd *cobra.Command, args []string) error {
	db, assetStore, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.GetComposerWithChildren(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Composer: %s\n", c.Name)
	fmt.Printf("  ID:     %s\n", c.ID)
	fmt.Printf("  Period: %s\n", c.Period)
	if !c.Image.IsEmpty() {
		fmt.Printf("  Image:  %s\n", assetStore.ResolveForDisplay(c.Image.Value))
	}

	fmt.Printf("\nWorks (%d):\n", len(c.Works))
	for _, w := range c.Works {
		fmt.Printf("  %-36s  %s", w.ID, w.Title)
		if w.Edition != "" {
			fmt.Printf(" [%s]", w.Edition)
		}
		if w.Year != 0 {
			fmt.Printf(" (%d)", w.Year)
		}
		if !w.File.IsEmpty() {
			fmt.Printf("  <%s>", filepath.Base(w.File.Value))
		}
		fmt.Println()
	}

	fmt.Printf("\nRecordings (%d):\n", len(c.Recordings))
	for _, r := range c.Recordings {
		fmt.Printf("  %-36s  %s", r.ID, r.Title)
		if r.Performer != "" {
			fmt.Printf(" - %s", r.Performer)
		}
		if r.Duration != "" {
			fmt.Printf(" (%s)", r.Duration)
		}
		if !r.File.IsEmpty() {
			fmt.Printf("  <%s>", filepath.Base(r.File.Value))
		}
		fmt.Println()
	}

	return nil
}

func runComposerAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	period, _ := cmd.Flags().GetString("period")
	imagePath, _ := cmd.Flags().GetString("image")

	db, assetStore, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.CreateComposer(&library.ComposerFields{
		Name:   name,
		Period: period,
	})
	if err != nil {
		return fmt.Errorf("failed to create composer: %w", err)
	}

	// Asset reference is attached right after creation, keyed by the new id
	if imagePath != "" {
		storedPath, err := storeLocalAsset(assetStore, imagePath, assets.CategoryAvatar, c.ID)
		if err != nil {
			return err
		}
		ref := library.LocalRef(storedPath)
		if _, err := db.UpdateComposer(c.ID, &library.ComposerUpdate{Image: &ref}); err != nil {
			return fmt.Errorf("failed to attach image: %w", err)
		}
	}

	fmt.Printf("Created composer %s (%s)\n", c.Name, c.ID)
	return nil
}

func runComposerRm(cmd *cobra.Command, args []string) error {
	db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteComposer(args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted composer %s\n", args[0])
	return nil
}

// storeLocalAsset copies a file from disk into the local asset store under
// the owning entity's id.
func storeLocalAsset(store *assets.LocalStore, srcPath string, category assets.Category, entityID string) (string, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", srcPath, err)
	}

	storedPath, err := store.Write(data, category, entityID, filepath.Ext(srcPath))
	if err != nil {
		return "", fmt.Errorf("failed to store asset: %w", err)
	}

	return storedPath, nil
}
