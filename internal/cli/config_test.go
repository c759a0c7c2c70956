package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/pipeline"
	"github.com/matzehuels/popdyn/pkg/store"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Store.Driver != store.DriverMemory {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, store.DriverMemory)
	}
	if cfg.Layout.Width != pipeline.DefaultWidth || cfg.Layout.Height != pipeline.DefaultHeight {
		t.Errorf("Layout size = %vx%v, want %vx%v", cfg.Layout.Width, cfg.Layout.Height,
			pipeline.DefaultWidth, pipeline.DefaultHeight)
	}
	if cfg.Layout.GroupBy != "sector" {
		t.Errorf("Layout.GroupBy = %q, want sector", cfg.Layout.GroupBy)
	}
	if cfg.Layout.Padding != 2 {
		t.Errorf("Layout.Padding = %v, want 2", cfg.Layout.Padding)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Panels.Interval != panels.DefaultInterval {
		t.Errorf("Panels.Interval = %v, want %v", cfg.Panels.Interval, panels.DefaultInterval)
	}
	if cfg.Panels.Viewport != panels.DefaultViewport {
		t.Errorf("Panels.Viewport = %d, want %d", cfg.Panels.Viewport, panels.DefaultViewport)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "config.toml",
			content: `
[layout]
width = 1200
group_by = "performance"

[panels]
interval = "5s"
variant = "focal"
`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `
layout:
  width: 1200
  group_by: performance
panels:
  interval: 5s
  variant: focal
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := loadConfig(path, false)
			if err != nil {
				t.Fatalf("loadConfig() error: %v", err)
			}
			if cfg.Layout.Width != 1200 {
				t.Errorf("Layout.Width = %v, want 1200", cfg.Layout.Width)
			}
			if cfg.Layout.Height != pipeline.DefaultHeight {
				t.Errorf("Layout.Height = %v, want default %v", cfg.Layout.Height, pipeline.DefaultHeight)
			}
			if cfg.Layout.GroupBy != "performance" {
				t.Errorf("Layout.GroupBy = %q, want performance", cfg.Layout.GroupBy)
			}
			if cfg.Panels.Interval != 5*time.Second {
				t.Errorf("Panels.Interval = %v, want 5s", cfg.Panels.Interval)
			}
			if cfg.Panels.Variant != "focal" {
				t.Errorf("Panels.Variant = %q, want focal", cfg.Panels.Variant)
			}
		})
	}
}

func TestLoadConfigSearchesConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	dir := filepath.Join(home, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "[store]\ndriver = \"sqlite\"\ndsn = \"popdyn.db\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Store.Driver != store.DriverSQLite || cfg.Store.DSN != "popdyn.db" {
		t.Errorf("Store = %+v, want sqlite popdyn.db", cfg.Store)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("POPDYN_LAYOUT_WIDTH", "640")
	t.Setenv("POPDYN_CACHE_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("POPDYN_PANELS_VIEWPORT", "700")

	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Layout.Width != 640 {
		t.Errorf("Layout.Width = %v, want 640", cfg.Layout.Width)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Panels.Viewport != 700 {
		t.Errorf("Panels.Viewport = %d, want 700", cfg.Panels.Viewport)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"), false)
	if err == nil {
		t.Fatal("loadConfig() with a missing explicit file should fail")
	}
}

func TestLayoutConfigOptions(t *testing.T) {
	opts := LayoutConfig{Width: 300, Height: 200, GroupBy: "weight", Padding: 0}.Options()

	if opts.Width != 300 || opts.Height != 200 || opts.GroupBy != "weight" {
		t.Errorf("Options() = %+v", opts)
	}
	if got := opts.PaddingValue(); got != 0 {
		t.Errorf("PaddingValue() = %v, want explicit 0", got)
	}
}
