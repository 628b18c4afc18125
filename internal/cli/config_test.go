package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	tmerrors "github.com/matzehuels/topomap/pkg/errors"
	"github.com/matzehuels/topomap/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		code    tmerrors.Code
	}{
		{"toml", "c.toml", "input = \"logs/net.csv\"\nspacing = 3.0\nfallback = false\n", ""},
		{"yaml", "c.yaml", "input: logs/net.csv\nspacing: 3\nfallback: false\n", ""},
		{"yml", "c.yml", "input: logs/net.csv\nspacing: 3\nfallback: false\n", ""},
		{"unknown toml key", "bad.toml", "colour = \"red\"\n", tmerrors.ErrCodeInvalidInput},
		{"unknown yaml key", "bad.yaml", "colour: red\n", tmerrors.ErrCodeInvalidInput},
		{"bad extension", "c.ini", "input=x\n", tmerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, dir, tt.file, tt.content))
			if tt.code != "" {
				if !tmerrors.Is(err, tt.code) {
					t.Fatalf("loadConfig() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.Input != "logs/net.csv" || cfg.Spacing != 3 {
				t.Errorf("cfg = %+v", cfg)
			}
			if cfg.Fallback == nil || *cfg.Fallback {
				t.Errorf("Fallback = %v, want explicit false", cfg.Fallback)
			}
		})
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); !tmerrors.Is(err, tmerrors.ErrCodeIO) {
		t.Errorf("missing config error = %v, want IO_ERROR", err)
	}
}

func TestConfigApplyKeepsUnsetDefaults(t *testing.T) {
	opts := pipeline.DefaultOptions()
	fileConfig{Width: 1000}.apply(&opts)

	if opts.Width != 1000 {
		t.Errorf("Width = %d, want 1000", opts.Width)
	}
	if opts.Height != pipeline.DefaultOptions().Height || !opts.Fallback {
		t.Errorf("unset keys changed defaults: %+v", opts)
	}
}

// flagCommand returns a command with the render flags parsed from args.
func flagCommand(t *testing.T, args ...string) (*cobra.Command, *renderFlags) {
	t.Helper()
	var f renderFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	cmd.SetContext(context.Background())
	return cmd, &f
}

func TestFallbackFlag(t *testing.T) {
	cmd, _ := flagCommand(t)
	fl := cmd.Flags().Lookup("fallback")
	if fl == nil {
		t.Fatal("fallback flag not registered")
	}
	if fl.DefValue != "true" {
		t.Errorf("fallback default = %s, want true", fl.DefValue)
	}
	for _, want := range []string{"PARENT", "--fallback=false"} {
		if !strings.Contains(fl.Usage, want) {
			t.Errorf("fallback usage %q should mention %q", fl.Usage, want)
		}
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd, f := flagCommand(t, "--fallback=false")
	opts, err := f.options(cmd, []string{"1"})
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if opts.Fallback {
		t.Error("--fallback=false should disable candidate parents")
	}
}

func TestRenderFlagsPrecedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := writeFile(t, t.TempDir(), "topomap.toml", `
input = "from-file.csv"
spacing = 7.0
mode = "rssi"
no_cache = true
`)

	cmd, f := flagCommand(t, "--config", cfg, "--spacing", "2", "--fallback=false")
	opts, err := f.options(cmd, []string{"4"})
	if err != nil {
		t.Fatalf("options() error = %v", err)
	}

	if opts.Sink != 4 {
		t.Errorf("Sink = %d, want 4", opts.Sink)
	}
	if opts.Input != "from-file.csv" {
		t.Errorf("Input = %q, want value from config", opts.Input)
	}
	if opts.Spacing != 2 {
		t.Errorf("Spacing = %v, want flag value 2", opts.Spacing)
	}
	if opts.Mode != "rssi" {
		t.Errorf("Mode = %q, want rssi", opts.Mode)
	}
	if opts.Fallback {
		t.Error("Fallback should be disabled by flag")
	}
	if opts.OutputDir != pipeline.DefaultOutputDir {
		t.Errorf("OutputDir = %q, want default", opts.OutputDir)
	}
	if !f.noCache {
		t.Error("no_cache from config not applied")
	}
}

func TestRenderFlagsDefaultConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	if err := os.MkdirAll(filepath.Join(home, appName), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(home, appName), "config.yaml", "output_dir: maps\n")

	cmd, f := flagCommand(t)
	opts, err := f.options(cmd, []string{"1"})
	if err != nil {
		t.Fatalf("options() error = %v", err)
	}
	if opts.OutputDir != "maps" {
		t.Errorf("OutputDir = %q, want maps", opts.OutputDir)
	}
}

func TestRenderFlagsErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tests := []struct {
		name  string
		sink  string
		flags []string
		code  tmerrors.Code
	}{
		{"non-numeric sink", "sink", nil, tmerrors.ErrCodeParse},
		{"zero sink", "0", nil, tmerrors.ErrCodeInvalidInput},
		{"negative sink", "-2", nil, tmerrors.ErrCodeInvalidInput},
		{"bad mode", "1", []string{"--mode", "spiral"}, tmerrors.ErrCodeInvalidInput},
		{"zero spacing", "1", []string{"--spacing", "0"}, tmerrors.ErrCodeInvalidInput},
		{"tiny figure", "1", []string{"--width", "50"}, tmerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, f := flagCommand(t, tt.flags...)
			_, err := f.options(cmd, []string{tt.sink})
			if !tmerrors.Is(err, tt.code) {
				t.Errorf("options() error = %v, want %s", err, tt.code)
			}
		})
	}
}
