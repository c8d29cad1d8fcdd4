package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ocstats/internal/cli"
	"github.com/theirongolddev/ocstats/internal/cli/theme"
	"github.com/theirongolddev/ocstats/internal/config"
	"github.com/theirongolddev/ocstats/internal/pipeline"
	"github.com/theirongolddev/ocstats/internal/source"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the answers collected by the setup form.
type setupValues struct {
	dataDir      string
	useCache     bool
	defaultModel string
	theme        string
}

func runSetup(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	cfg := appConfig

	dir := dataDir()
	files, _ := source.ScanDir(dir)

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("  Welcome to ocstats!"))
	fmt.Fprintln(w)
	if len(files) > 0 {
		fmt.Fprintf(w, "  Found %s message files in %s (%s sessions)\n\n",
			cli.FormatNumber(int64(len(files))), dir, cli.FormatNumber(int64(source.CountSessions(files))))
	} else {
		fmt.Fprintf(w, "  No OpenCode messages found in %s yet.\n\n", dir)
	}

	vals := setupValues{
		dataDir:      cfg.General.DataDir,
		useCache:     cfg.General.UseCache,
		defaultModel: cfg.General.DefaultModel,
		theme:        theme.ByName(cfg.Appearance.Theme).Name,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenCode storage directory").
				Description("Leave blank to use "+config.DefaultDataDir()).
				Placeholder(config.DefaultDataDir()).
				Value(&vals.dataDir),
			huh.NewConfirm().
				Title("Cache parsed messages?").
				Description("Speeds up repeat runs with a SQLite cache at "+shortPath(pipeline.CachePath())).
				Value(&vals.useCache),
			huh.NewInput().
				Title("Default model filter").
				Description("providerID/modelID applied when --model is not given. Leave blank for all models.").
				Value(&vals.defaultModel).
				Validate(validateDefaultModel),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.theme),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(w, "  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("running setup form: %w", err)
	}

	cfg = applySetup(cfg, vals)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	appConfig = cfg

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Saved to %s\n", config.Path())
	fmt.Fprintln(w, "  Run `ocstats daily` to see your usage.")
	fmt.Fprintln(w)
	return nil
}

// applySetup copies trimmed form answers onto cfg.
func applySetup(cfg config.Config, vals setupValues) config.Config {
	cfg.General.DataDir = strings.TrimSpace(vals.dataDir)
	cfg.General.UseCache = vals.useCache
	cfg.General.DefaultModel = strings.TrimSpace(vals.defaultModel)
	cfg.Appearance.Theme = theme.ByName(vals.theme).Name
	return cfg
}

func validateDefaultModel(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	provider, modelID, ok := strings.Cut(s, "/")
	if !ok || provider == "" || modelID == "" {
		return errors.New("use the form providerID/modelID")
	}
	return nil
}

func shortPath(p string) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(p, home) {
		return "~" + strings.TrimPrefix(p, home)
	}
	return p
}
