package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mprobe/internal/config"
)

// writeConfig writes one temp TOML file for a test.
// Params: t test handle; content TOML document body.
// Returns: file path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad_ExpandsEnvAndAppliesDefaults verifies env expansion and defaulting.
// Params: testing.T for assertions.
// Returns: none.
func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_TAG", "pid")

	path := writeConfig(t, `
[metrics]
enable_tags = ["${TEST_TAG}", "net.*"]
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if got := cfg.Metrics.EnableTags[0]; got != "pid" {
		t.Fatalf("unexpected expanded tag: %q", got)
	}
	if !cfg.Log.Console.Enabled {
		t.Fatalf("expected console logging to be enabled by default")
	}
	if cfg.Log.Console.Format != "line" || cfg.Log.File.Format != "json" {
		t.Fatalf("unexpected default formats: %q %q", cfg.Log.Console.Format, cfg.Log.File.Format)
	}
	if cfg.Report.Sink != "console" {
		t.Fatalf("unexpected default report sink: %q", cfg.Report.Sink)
	}
	if got := cfg.Procstats.Scrape.Duration; got != 10*time.Second {
		t.Fatalf("unexpected default scrape interval: %v", got)
	}
	if !cfg.Procstats.On() || !cfg.Procstats.WatchSelf() {
		t.Fatalf("expected procstats self collection enabled by default")
	}
}

// TestLoad_DirectoryConcatenatesSnippets verifies directory config loading.
// Params: testing.T for assertions.
// Returns: none.
func TestLoad_DirectoryConcatenatesSnippets(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	writeFile("10-metrics.toml", "[metrics]\nenable_all = true\n")
	writeFile("20-report.toml", "[report]\nsink = \"none\"\n")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load config dir: %v", err)
	}
	if !cfg.Metrics.EnableAll {
		t.Fatalf("expected enable_all from first snippet")
	}
	if cfg.Report.Sink != "none" {
		t.Fatalf("expected sink from second snippet, got %q", cfg.Report.Sink)
	}
}

// TestLoad_RejectsBadValues verifies validation failures.
// Params: testing.T for assertions.
// Returns: none.
func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			name:    "bad report sink",
			content: "[report]\nsink = \"clickhouse\"\n",
			wantSub: "report.sink",
		},
		{
			name:    "bad log level",
			content: "[log.console]\nenabled = true\nlevel = \"loud\"\n",
			wantSub: "log.console.level",
		},
		{
			name:    "file sink without path",
			content: "[log.file]\nenabled = true\n",
			wantSub: "log.file.path",
		},
		{
			name:    "empty tag pattern",
			content: "[metrics]\nenable_tags = [\" \"]\n",
			wantSub: "metrics.enable_tags",
		},
		{
			name:    "invalid pid",
			content: "[procstats]\npids = [0]\n",
			wantSub: "procstats.pids",
		},
	}

	for _, tc := range cases {
		path := writeConfig(t, tc.content)
		_, err := config.Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantSub) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.wantSub)
		}
	}
}
