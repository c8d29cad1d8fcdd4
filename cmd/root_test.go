package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/theirongolddev/ocstats/internal/config"
	"github.com/theirongolddev/ocstats/internal/logger"
	"github.com/theirongolddev/ocstats/internal/pipeline"
)

// isolate points config and cache lookups at fresh temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(config.EnvDataDir, "")
	t.Setenv("CI", "1")
}

// execute runs the root command with args and returns what it wrote to
// stdout. Flags are reset to their defaults first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeMessage(t *testing.T, dataDir, id string, created time.Time, provider, modelID string, cost float64, input int64) {
	t.Helper()
	dir := filepath.Join(dataDir, "message", "ses_test")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf(`{"id":%q,"sessionID":"ses_test","role":"assistant","time":{"created":%d},`+
		`"providerID":%q,"modelID":%q,"cost":%v,`+
		`"tokens":{"input":%d,"output":1,"reasoning":0,"cache":{"read":0,"write":0}}}`,
		id, created.UnixMilli(), provider, modelID, cost, input)
	if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local)
}

// seedJanuary writes three messages: two on Jan 1 and one on Jan 2, 2026.
func seedJanuary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeMessage(t, dir, "msg_1", noon(2026, time.January, 1), "anthropic", "claude", 1, 10)
	writeMessage(t, dir, "msg_2", noon(2026, time.January, 1), "openai", "gpt-5", 2, 20)
	writeMessage(t, dir, "msg_3", noon(2026, time.January, 2), "openai", "gpt-5", 4, 30)
	return dir
}

func TestDailyCommand(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	out, err := execute(t, "daily", "-d", dir, "--from", "2026-01-01", "--to", "2026-01-31")
	if err != nil {
		t.Fatalf("daily: %v", err)
	}

	for _, want := range []string{"Usage by Period", "2026-01-01", "2026-01-02", "Total", "$7.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "2026-01-01") > strings.Index(out, "2026-01-02") {
		t.Error("periods out of order")
	}
}

func TestWeeklyCommand(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	out, err := execute(t, "weekly", "--data-dir", dir)
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if !strings.Contains(out, "2026-W01") {
		t.Errorf("output missing 2026-W01:\n%s", out)
	}
}

func TestModelsCommand(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	out, err := execute(t, "models", "-d", dir)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if !strings.Contains(out, "Model Breakdown") {
		t.Errorf("output missing title:\n%s", out)
	}
	gpt := strings.Index(out, "openai/gpt-5")
	claude := strings.Index(out, "anthropic/claude")
	if gpt < 0 || claude < 0 || gpt > claude {
		t.Errorf("want openai/gpt-5 listed before anthropic/claude:\n%s", out)
	}
}

func TestModelsCommand_ModelFilter(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	out, err := execute(t, "models", "-d", dir, "-m", "anthropic/claude")
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if strings.Contains(out, "openai/gpt-5") {
		t.Errorf("filtered output still lists openai/gpt-5:\n%s", out)
	}
	if !strings.Contains(out, "$1.00") {
		t.Errorf("output missing $1.00:\n%s", out)
	}
}

func TestTodayCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeMessage(t, dir, "msg_now", time.Now(), "openai", "gpt-5", 1.25, 5)
	writeMessage(t, dir, "msg_old", noon(2020, time.June, 1), "openai", "gpt-5", 100, 5)

	out, err := execute(t, "-d", dir)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !strings.Contains(out, "Today") || !strings.Contains(out, "$1.25") {
		t.Errorf("output missing today's totals:\n%s", out)
	}
	if strings.Contains(out, "$101.25") {
		t.Errorf("today included an old message:\n%s", out)
	}
}

func TestCommand_EmptyDataDir(t *testing.T) {
	isolate(t)
	out, err := execute(t, "monthly", "-d", filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if !strings.Contains(out, "│ -") || !strings.Contains(out, "$0.00") {
		t.Errorf("want placeholder row and zero total:\n%s", out)
	}
}

func TestCommand_CacheAndNoCacheAgree(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)
	cacheHome := os.Getenv("XDG_CACHE_HOME")

	run := func(args ...string) string {
		t.Helper()
		out, err := execute(t, args...)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	cold := run("daily", "-d", dir)
	warm := run("daily", "-d", dir)
	uncached := run("daily", "-d", dir, "--no-cache")

	if cold != uncached || warm != uncached {
		t.Errorf("cached and uncached output differ:\n%s\n---\n%s\n---\n%s", cold, warm, uncached)
	}
	if _, err := os.Stat(filepath.Join(cacheHome, "ocstats", "messages.db")); err != nil {
		t.Errorf("cache database not created: %v", err)
	}
}

func TestCommand_FilterErrors(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad format", []string{"daily", "-d", dir, "--from", "2026/01/01"}, pipeline.ErrInvalidDateFormat},
		{"bad value", []string{"models", "-d", dir, "--to", "2026-02-30"}, pipeline.ErrInvalidDateValue},
		{"reversed", []string{"yearly", "-d", dir, "--from", "2026-02-01", "--to", "2026-01-01"}, pipeline.ErrInvalidDateRange},
		{"empty model", []string{"-d", dir, "--model", ""}, pipeline.ErrInvalidModelFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, err := execute(t, "config", "-d", dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"using defaults", "Data directory: " + dir + " (--data-dir)", "Theme: flexoki-dark"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommand_CachedMessageCount(t *testing.T) {
	isolate(t)
	dir := seedJanuary(t)

	out, err := execute(t, "config", "-d", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Messages: 0") {
		t.Errorf("want zero count before any load:\n%s", out)
	}
	if _, err := os.Stat(pipeline.CachePath()); err == nil {
		t.Error("config created the cache database")
	}

	if _, err := execute(t, "daily", "-d", dir); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "config", "-d", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Messages: 3") {
		t.Errorf("want cached message count:\n%s", out)
	}
}

func TestReportError(t *testing.T) {
	prev := logger.Logger
	t.Cleanup(func() { logger.Logger = prev })
	var logs, out bytes.Buffer
	logger.Setup(&logs, slog.LevelDebug)

	err := fmt.Errorf("%w in /data: boom", pipeline.ErrDataLoad)

	flagVerbose = false
	reportError(&out, err)
	if logs.Len() != 0 {
		t.Errorf("logged without --verbose: %q", logs.String())
	}
	if !strings.HasPrefix(out.String(), "Error: Data loading failed\n") {
		t.Errorf("output = %q", out.String())
	}

	flagVerbose = true
	t.Cleanup(func() { flagVerbose = false })
	reportError(io.Discard, err)
	if !strings.Contains(logs.String(), "level=ERROR") || !strings.Contains(logs.String(), "boom") {
		t.Errorf("verbose log = %q, want error record", logs.String())
	}
}

func TestVersionFlag(t *testing.T) {
	isolate(t)
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ocstats version") {
		t.Errorf("output = %q, want version line", out)
	}
}

func TestApplySetup(t *testing.T) {
	cfg := applySetup(config.DefaultConfig(), setupValues{
		dataDir:      "  /srv/opencode ",
		useCache:     false,
		defaultModel: " openai/gpt-5 ",
		theme:        "tokyo-night",
	})

	if cfg.General.DataDir != "/srv/opencode" || cfg.General.DefaultModel != "openai/gpt-5" {
		t.Errorf("general = %+v, want trimmed values", cfg.General)
	}
	if cfg.General.UseCache {
		t.Error("UseCache = true, want false")
	}
	if cfg.Appearance.Theme != "tokyo-night" {
		t.Errorf("Theme = %q, want tokyo-night", cfg.Appearance.Theme)
	}
}

func TestValidateDefaultModel(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"", true},
		{"   ", true},
		{"openai/gpt-5", true},
		{"openrouter/anthropic/claude", true},
		{"gpt-5", false},
		{"/gpt-5", false},
		{"openai/", false},
	}
	for _, tt := range tests {
		if err := validateDefaultModel(tt.in); (err == nil) != tt.ok {
			t.Errorf("validateDefaultModel(%q) = %v, want ok=%v", tt.in, err, tt.ok)
		}
	}
}
