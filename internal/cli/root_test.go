package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/store"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

const testDataset = `{
  "items": [
    {"id": "births", "name": "Births", "value": 90, "target": 100, "weight": 6, "sector": "Health"},
    {"id": "deaths", "name": "Deaths", "value": 50, "target": 100, "weight": 2, "sector": "Health"},
    {"id": "migration", "name": "Migration", "value": 80, "target": 100, "weight": 2, "sector": "Mobility"}
  ],
  "metrics": {
    "pending_approvals": 2,
    "overdue_approvals": 1,
    "critical_alerts": 1,
    "dei_score": 75,
    "escalations": 3,
    "open_claims": 4
  }
}`

// writeDataset writes the test dataset into a temp dir and returns its path.
func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indicators.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with isolated config and cache dirs.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"layout", "render", "panels", "import", "serve", "watch", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if root.PersistentFlags().Lookup("verbose") == nil {
		t.Error("missing --verbose flag")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeDataset(t)

	if err := runCLI(t, "layout", input, "--no-cache", "--width", "400", "--height", "300"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(strings.TrimSuffix(input, ".json") + ".layout.json")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	res, err := treemap.UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult: %v", err)
	}
	if res.Width != 400 || res.Height != 300 {
		t.Errorf("frame = %vx%v, want 400x300", res.Width, res.Height)
	}
	if len(res.Tiles) != 3 {
		t.Errorf("tiles = %d, want 3", len(res.Tiles))
	}
	if len(res.Groups) != 2 {
		t.Errorf("groups = %d, want 2", len(res.Groups))
	}
}

func TestLayoutCommandFlags(t *testing.T) {
	input := writeDataset(t)
	output := filepath.Join(t.TempDir(), "perf.json")

	err := runCLI(t, "layout", input, "--no-cache", "-g", "performance", "--category", "Health", "-o", output)
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	res, err := treemap.UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult: %v", err)
	}
	if res.GroupBy != treemap.GroupByPerformance {
		t.Errorf("GroupBy = %q, want performance", res.GroupBy)
	}
	if len(res.Tiles) != 2 {
		t.Errorf("tiles = %d, want 2 after category filter", len(res.Tiles))
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	input := writeDataset(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad group by", []string{"layout", input, "--no-cache", "-g", "color"}, errors.ErrCodeInvalidGroupBy},
		{"bad width", []string{"layout", input, "--no-cache", "--width=-5"}, errors.ErrCodeInvalidDimensions},
		{"bad format", []string{"render", input, "--no-cache", "-f", "gif"}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeDataset(t)
	base := filepath.Join(t.TempDir(), "out")

	if err := runCLI(t, "render", input, "--no-cache", "-f", "svg,json,dot", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}

	checks := map[string]string{
		".svg":  "<svg",
		".json": `"tiles"`,
		".dot":  "digraph",
	}
	for ext, want := range checks {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			t.Errorf("missing %s: %v", ext, err)
			continue
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("%s output should contain %q", ext, want)
		}
	}
}

func TestPanelsCommand(t *testing.T) {
	input := writeDataset(t)

	if err := runCLI(t, "panels", input, "--json"); err != nil {
		t.Errorf("panels: %v", err)
	}
	if err := runCLI(t, "panels", input, "--viewport", "600"); err != nil {
		t.Errorf("panels table: %v", err)
	}

	err := runCLI(t, "panels", input, "--variant", "diagonal")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad variant error = %v, want INVALID_INPUT", err)
	}

	err = runCLI(t, "panels", input, "--override", "reports")
	if !errors.Is(err, errors.ErrCodeInvalidPanel) {
		t.Errorf("bad override error = %v, want INVALID_PANEL", err)
	}
}

func TestImportCommandSQLite(t *testing.T) {
	input := writeDataset(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "popdyn.db")
	configPath := filepath.Join(dir, "config.toml")
	config := "[store]\ndriver = \"sqlite\"\ndsn = \"" + filepath.ToSlash(dbPath) + "\"\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := runCLI(t, "--config", configPath, "import", input); err != nil {
		t.Fatalf("import: %v", err)
	}

	ctx := context.Background()
	repo, err := store.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	items, err := repo.ListItems(ctx, filter.Criteria{})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}
	m, err := repo.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.Escalations != 3 || m.DEIScore != 75 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCachePathCommand(t *testing.T) {
	if err := runCLI(t, "cache", "path"); err != nil {
		t.Errorf("cache path: %v", err)
	}
	if err := runCLI(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}
