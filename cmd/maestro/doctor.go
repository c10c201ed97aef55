package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clara/maestro/internal/localstore"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure maestro can operate correctly.

This command checks:
- Local database accessibility and integrity
- Asset root directory permissions
- Remote database and bucket reachability (with --remote)

Use this command to troubleshoot issues before pushing or pulling.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("remote", false, "also check remote store connectivity")
}

type checkResult struct {
	name    string
	message string
	failed  bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	checkRemote, _ := cmd.Flags().GetBool("remote")

	results := []checkResult{
		checkLocalDatabase(viper.GetString("db")),
		checkAssetRoot(viper.GetString("assets")),
	}

	if checkRemote {
		results = append(results, checkRemoteStore())
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if r.failed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%-24s %-4s  %s\n", r.name, status, r.message)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}

	fmt.Println("\nAll checks passed.")
	return nil
}

func checkLocalDatabase(path string) checkResult {
	db, err := localstore.Open(path)
	if err != nil {
		return checkResult{"local database", err.Error(), true}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{"local database", err.Error(), true}
	}

	return checkResult{"local database", path, false}
}

func checkAssetRoot(root string) checkResult {
	if err := os.MkdirAll(root, 0755); err != nil {
		return checkResult{"asset root", err.Error(), true}
	}

	// Probe for writability
	probe := filepath.Join(root, ".maestro-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return checkResult{"asset root", fmt.Sprintf("not writable: %v", err), true}
	}
	os.Remove(probe)

	return checkResult{"asset root", root, false}
}

func checkRemoteStore() checkResult {
	ctx := context.Background()

	db, _, err := openRemote(ctx)
	if err != nil {
		return checkResult{"remote store", err.Error(), true}
	}
	db.Close()

	return checkResult{"remote store", "reachable", false}
}
