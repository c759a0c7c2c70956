package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// runComplete executes args and returns what the command wrote.
func runComplete(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestFlagValueCompletions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"group-by on layout", []string{cobra.ShellCompRequestCmd, "layout", "--group-by", ""},
			[]string{"sector", "type", "performance", "weight"}},
		{"group-by on watch", []string{cobra.ShellCompRequestCmd, "watch", "-g", ""},
			[]string{"sector", "weight"}},
		{"render formats", []string{cobra.ShellCompRequestCmd, "render", "--format", ""},
			[]string{"svg", "png", "txt", "dot"}},
		{"panel variants", []string{cobra.ShellCompRequestCmd, "panels", "--variant", ""},
			[]string{"asymmetric", "focal"}},
		{"override panels", []string{cobra.ShellCompRequestCmd, "panels", "--override", ""},
			[]string{"actions", "monitoring", "claims"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runComplete(t, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w+"\n") {
					t.Errorf("completions %q missing %q", out, w)
				}
			}
			if !strings.Contains(out, ":4") {
				t.Errorf("completions %q should disable file completion", out)
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			if out := runComplete(t, "completion", shell); !strings.Contains(out, "popdyn") {
				t.Errorf("%s script does not mention popdyn", shell)
			}
		})
	}
}
