package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ocstats/internal/cli"
	"github.com/theirongolddev/ocstats/internal/config"
	"github.com/theirongolddev/ocstats/internal/pipeline"
	"github.com/theirongolddev/ocstats/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	cfg := appConfig

	fmt.Fprintf(w, "  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Fprintln(w, "  Status: loaded")
	} else {
		fmt.Fprintln(w, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [General]")
	fmt.Fprintf(w, "    Data directory: %s (%s)\n", dataDir(), dataDirSource(cfg))
	fmt.Fprintf(w, "    Use cache:      %v\n", cfg.General.UseCache)
	if cfg.General.DefaultModel != "" {
		fmt.Fprintf(w, "    Default model:  %s\n", cfg.General.DefaultModel)
	} else {
		fmt.Fprintln(w, "    Default model:  none")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Appearance]")
	fmt.Fprintf(w, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  [Cache]")
	fmt.Fprintf(w, "    Path:     %s\n", pipeline.CachePath())
	if n, err := cachedMessages(); err != nil {
		fmt.Fprintf(w, "    Messages: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(w, "    Messages: %s\n", cli.FormatNumber(int64(n)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "  Run `ocstats setup` to reconfigure.")
	return nil
}

// cachedMessages counts the messages in the cache without creating it.
func cachedMessages() (int, error) {
	path := pipeline.CachePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}
	cache, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = cache.Close() }()
	return cache.MessageCount()
}

// dataDirSource names where dataDir() got its value.
func dataDirSource(cfg config.Config) string {
	switch {
	case flagDataDir != "":
		return "--data-dir"
	case os.Getenv(config.EnvDataDir) != "":
		return config.EnvDataDir
	case cfg.General.DataDir != "":
		return "config"
	default:
		return "default"
	}
}
