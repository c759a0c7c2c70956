package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/popdyn/pkg/panels"
)

// uiOut receives every human-readable status line. Tests swap it.
var uiOut io.Writer = os.Stdout

// Palette
var (
	colorCyan   = lipgloss.Color("36")  // hero, titles
	colorGreen  = lipgloss.Color("35")  // success, cache hits
	colorYellow = lipgloss.Color("220") // warnings, selection
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted text, borders
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for addresses and emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached  = lipgloss.NewStyle().Foreground(colorGreen)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconHero    = "★"
)

// printStatus writes one icon-prefixed line.
func printStatus(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(uiOut, style.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	printStatus(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(iconError, styleIconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(iconWarning, styleIconWarning, styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Fprintln(uiOut, "  "+StyleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(uiOut, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats summarizes a treemap: items laid out, groups, tiles and
// whether the layout came from the cache.
func printStats(itemCount, groupCount, tileCount int, cached bool) {
	parts := []string{fmt.Sprintf("%d items", itemCount)}
	if groupCount > 0 {
		parts = append(parts, fmt.Sprintf("%d groups", groupCount))
	}
	if tileCount > 0 {
		parts = append(parts, fmt.Sprintf("%d tiles", tileCount))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(uiOut, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}

// printAllocation prints the hero, breakpoint and variant of a panel
// allocation followed by the per-panel table.
func printAllocation(a panels.Allocation, viewport int) {
	fmt.Fprintln(uiOut, StyleTitle.Render("Panels"))
	printKeyValue("Hero", iconHero+" "+panelTitle(a.Hero))
	printKeyValue("Breakpoint", fmt.Sprintf("%s (%dpx)", a.Breakpoint, viewport))
	printKeyValue("Variant", string(a.Variant))
	switch {
	case a.Overridden:
		printKeyValue("Source", "override")
	case a.Frozen:
		printKeyValue("Source", "frozen")
	}
	printNewline()
	fmt.Fprintln(uiOut, panelTable(a))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(uiOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(uiOut)
}
