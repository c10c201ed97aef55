package main

import (
	"fmt"
	"os"

	"github.com/clara/maestro/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "maestro",
		Short: "Manage a classical music library across a local and a remote store",
		Long: `maestro manages a hierarchical music library (composers, their works and
recordings, each optionally carrying a cover image, score, or audio file)
that lives in two places: an embedded local database with an asset directory,
and a remote database with companion object storage.

The push and pull commands copy a complete composer subtree between the two
stores, regenerating identifiers and re-encoding assets as they go.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./maestro.yaml)")
	rootCmd.PersistentFlags().String("db", "maestro.db", "local library database file")
	rootCmd.PersistentFlags().String("assets", "assets", "local asset root directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	// Bind flags to viper
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("assets", rootCmd.PersistentFlags().Lookup("assets"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("maestro")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix("MAESTRO")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	viper.ReadInConfig()

	level := "info"
	if viper.GetBool("verbose") {
		level = "debug"
	} else if viper.GetBool("quiet") {
		level = "error"
	}
	logging.Init(logging.Config{Level: level, Format: "console"})
}

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
