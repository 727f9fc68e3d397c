package main

import (
	"fmt"
	"os"

	"github.com/cuemby/ftscore/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ftsctl",
	Short: "ftsctl - debug CLI for a ftscore index",
	Long: `ftsctl drives a single ftscore index directly, with no server
in between. It is a debugging and smoke-testing tool, not a client for
a networked deployment: every subcommand opens the index's on-disk
directory itself.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("ftsctl version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "", "path to a ftsctl config file (optional)")
	rootCmd.PersistentFlags().String("data-dir", "", "index data directory (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(addDocumentsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statsCmd)
}

func initConfig() {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	if dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if json, _ := rootCmd.PersistentFlags().GetBool("log-json"); json {
		cfg.LogJSON = true
	}
	cfg.InitLogger()
}
